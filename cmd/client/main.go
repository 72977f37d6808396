package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const serverURL = "http://localhost:8080"

// Contact mirrors the server's contact shape for this demo client.
type Contact struct {
	Id        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email,omitempty"`
	Company   string   `json:"company,omitempty"`
	Tags      []string `json:"tags"`
}

// sessionToken authenticates all owner-scoped calls after login.
var sessionToken string

// main walks through the whole API once: register a fresh user, create a few contacts, merge
// two of them, share the result, and resolve the share link like a third party would.
//
// Usage example on the command line:
// > go run main.go
func main() {
	email := "demo-" + uuid.NewString() + "@example.com"
	registerBody := fmt.Sprintf(`{
		"firstName": "Demo",
		"lastName": "User",
		"email": %q,
		"password": "correct-horse-battery"
	}`, email)
	var registered struct {
		Token string `json:"token"`
	}
	send("POST", "/api/auth/register", registerBody, &registered)
	sessionToken = registered.Token
	fmt.Println("registered", email)

	first := createContact(`{"firstName": "Jo", "lastName": "Fellow", "tags": ["tennis"]}`)
	second := createContact(`{"firstName": "Johanna", "lastName": "Lee", "company": "ACME", "tags": ["work"]}`)
	createContact(`{"firstName": "Hans", "lastName": "Wurst"}`)
	fmt.Println("created contacts", first.Id, second.Id)

	mergeBody := fmt.Sprintf(`{"contactIds": [%d, %d]}`, first.Id, second.Id)
	var merged Contact
	send("POST", "/api/contacts/merge", mergeBody, &merged)
	fmt.Printf("merged into %d: %s %s (%v)\n", merged.Id, merged.FirstName, merged.LastName, merged.Tags)

	var shared struct {
		ShareToken string `json:"shareToken"`
		ShareUrl   string `json:"shareUrl"`
	}
	send("POST", fmt.Sprintf("/api/contacts/%d/share", merged.Id), "", &shared)
	fmt.Println("share url:", shared.ShareUrl)

	var resolved Contact
	send("GET", "/api/share/"+shared.ShareToken, "", &resolved)
	fmt.Printf("resolved share: %s %s, tags %v\n", resolved.FirstName, resolved.LastName, resolved.Tags)
}

func createContact(body string) Contact {
	var contact Contact
	send("POST", "/api/contacts", body, &contact)
	return contact
}

func send(method string, path string, body string, dest interface{}) {
	req, err := http.NewRequest(method, serverURL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	if res.StatusCode >= 300 {
		panic(fmt.Sprintf("%s %s failed with %d: %s", method, path, res.StatusCode, resBody))
	}
	if dest != nil {
		if err := json.Unmarshal(resBody, dest); err != nil {
			fmt.Println("could not unmarshal JSON", err)
			panic(err)
		}
	}
}
