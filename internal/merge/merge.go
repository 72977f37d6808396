// Package merge computes the result of combining several contacts into one.
// It is pure data transformation and knows nothing about HTTP or storage.
package merge

import "gitlab.com/dirk.krummacker/contact-hub/internal/model"

// field is one mergeable scalar field of a contact, represented by its
// accessors so that the combination loop can iterate fields in a fixed order.
type field struct {
	get func(*model.Contact) string
	set func(*model.Contact, string)
}

// fieldOrder is the fixed priority order in which scalar fields are merged.
// The order matters for reproducibility, not for the outcome of a single
// field: each field is filled independently with the first non-empty value.
var fieldOrder = []field{
	{func(c *model.Contact) string { return c.FirstName }, func(c *model.Contact, v string) { c.FirstName = v }},
	{func(c *model.Contact) string { return c.LastName }, func(c *model.Contact, v string) { c.LastName = v }},
	{func(c *model.Contact) string { return c.PrimaryPhone }, func(c *model.Contact, v string) { c.PrimaryPhone = v }},
	{func(c *model.Contact) string { return c.SecondaryPhone }, func(c *model.Contact, v string) { c.SecondaryPhone = v }},
	{func(c *model.Contact) string { return c.Email }, func(c *model.Contact, v string) { c.Email = v }},
	{func(c *model.Contact) string { return c.Company }, func(c *model.Contact, v string) { c.Company = v }},
	{func(c *model.Contact) string { return c.JobTitle }, func(c *model.Contact, v string) { c.JobTitle = v }},
	{func(c *model.Contact) string { return c.Description }, func(c *model.Contact, v string) { c.Description = v }},
	{func(c *model.Contact) string { return c.PrivateNote }, func(c *model.Contact, v string) { c.PrivateNote = v }},
	{func(c *model.Contact) string { return c.Nickname }, func(c *model.Contact, v string) { c.Nickname = v }},
	{func(c *model.Contact) string { return c.AvatarUrl }, func(c *model.Contact, v string) { c.AvatarUrl = v }},
}

// Combine merges the given contacts into a single new contact owned by
// ownerId. For every scalar field the first non-empty value wins, scanning
// the sources in the order they are passed in; once a field is set it is
// never overwritten. The order of the sources is therefore part of the
// caller-visible contract. Tags are unioned with duplicates removed.
//
// The returned contact has no id; assigning one is the caller's business.
func Combine(sources []model.Contact, ownerId int64) model.Contact {
	var merged model.Contact
	for _, f := range fieldOrder {
		for i := range sources {
			if v := f.get(&sources[i]); v != "" {
				f.set(&merged, v)
				break
			}
		}
	}
	merged.Tags = unionTags(sources)
	merged.OwnerId = ownerId
	return merged
}

// unionTags collects the tags of all sources, keeping the first occurrence
// of each tag and dropping duplicates.
func unionTags(sources []model.Contact) model.TagList {
	seen := make(map[string]bool)
	union := model.TagList{}
	for _, source := range sources {
		for _, tag := range source.Tags {
			if !seen[tag] {
				seen[tag] = true
				union = append(union, tag)
			}
		}
	}
	return union
}
