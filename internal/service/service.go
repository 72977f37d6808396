package service

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auditlog"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auth"
)

// maxInt is the largest possible int value
const maxInt = int(^uint(0) >> 1)

// Rate limit per client IP: 100 requests per 15 minute window.
const (
	rateWindow   = 15 * time.Minute
	rateRequests = 100
)

// db is a handle to the database.
var db *sqlx.DB

// audit is the append-only log of contact merges.
var audit auditlog.Store

// jwtSecret signs both login session tokens and share tokens.
var jwtSecret []byte

// baseURL is the externally visible address under which share links are built.
var baseURL string

// insertContactSQL creates a contact row. It is used both as a prepared
// statement and inside the merge transaction.
const insertContactSQL = `
	INSERT INTO contacts (firstname, lastname, nickname, primaryphone, secondaryphone,
		email, company, jobtitle, description, privatenote, tags, avatarurl, ownerid)
	VALUES (:firstname, :lastname, :nickname, :primaryphone, :secondaryphone,
		:email, :company, :jobtitle, :description, :privatenote, :tags, :avatarurl, :ownerid)
`

// insertContact is a prepared statement for creating a contact on the database.
var insertContact *sqlx.NamedStmt

// selectContactWhereIdAndOwner is a prepared statement for selecting one contact of one user.
var selectContactWhereIdAndOwner *sqlx.Stmt

// selectContactWhereId is a prepared statement for the owner-independent lookup that resolving
// a share token needs.
var selectContactWhereId *sqlx.Stmt

// deleteContactWhereIdAndOwner is a prepared statement for deleting one contact of one user.
var deleteContactWhereIdAndOwner *sqlx.Stmt

// insertUser is a prepared statement for creating a user account.
var insertUser *sqlx.NamedStmt

// selectUserWhereEmail is a prepared statement for the login lookup.
var selectUserWhereEmail *sqlx.Stmt

// selectUserWhereId is a prepared statement for loading the authenticated user.
var selectUserWhereId *sqlx.Stmt

// allowedOrderby are the allowed values for the 'orderby' URL parameter.
var allowedOrderby = []string{"id", "firstname", "lastname", "email", "company", "created"}

// allowedAscending are the allowed values for the 'ascending' URL parameter.
var allowedAscending = []string{"true", "false"}

// CreateDatabase initializes and returns a database connection. The connection parameters are
// taken from the system's environment variables.
func CreateDatabase() *sql.DB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/test?parseTime=true",
		os.Getenv("DBUSER"), os.Getenv("DBPWD"), os.Getenv("DBHOST"))
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal(err)
	}
	return sqlDB
}

// SetupConfig reads the process-wide settings from environment variables. The signing secret is
// mandatory because both session and share tokens depend on it.
func SetupConfig() {
	jwtSecret = []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}
	baseURL = os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
}

// SetupDatabaseWrapper initializes the sqlx database wrapper with the specified sql database. It
// then prepares all statements. The database argument can be a real database for production use
// or a mock database within unit tests.
func SetupDatabaseWrapper(sqlDB *sql.DB) {
	var err error
	db = sqlx.NewDb(sqlDB, "mysql")
	audit = auditlog.NewSQLStore(db)

	// Prepared statements offer a significant speed increase if executed many times.
	insertContact, err = db.PrepareNamed(insertContactSQL)
	if err != nil {
		log.Fatal(err)
	}
	selectContactWhereIdAndOwner, err = db.Preparex(`
		SELECT * FROM contacts WHERE id = ? AND ownerid = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
	selectContactWhereId, err = db.Preparex(`
		SELECT * FROM contacts WHERE id = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
	deleteContactWhereIdAndOwner, err = db.Preparex(`
		DELETE FROM contacts WHERE id = ? AND ownerid = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
	insertUser, err = db.PrepareNamed(`
		INSERT INTO users (firstname, lastname, email, password, isadmin)
		VALUES (:firstname, :lastname, :email, :password, :isadmin)
	`)
	if err != nil {
		log.Fatal(err)
	}
	selectUserWhereEmail, err = db.Preparex(`
		SELECT * FROM users WHERE email = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
	selectUserWhereId, err = db.Preparex(`
		SELECT * FROM users WHERE id = ?
	`)
	if err != nil {
		log.Fatal(err)
	}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
//
// The GIN_LOGGING environment variable selects the request logging: 'off' disables it, 'json'
// replaces gin's default log with structured slog lines carrying a request id. Anything else
// keeps gin's default logger.
func SetupHttpRouter() *gin.Engine {
	var router *gin.Engine
	switch strings.ToLower(os.Getenv("GIN_LOGGING")) {
	case "off":
		router = gin.New()
		router.Use(gin.Recovery())
	case "json":
		router = gin.New()
		router.Use(gin.Recovery(), requestLogger())
	default:
		router = gin.Default()
	}
	router.Use(cors.Default())
	router.Use(rateLimiter(rateWindow, rateRequests))

	public := router.Group("/api")
	public.GET("/health", health)
	public.GET("/share/:token", resolveSharedContact)
	public.POST("/auth/register", register)
	public.POST("/auth/login", login)

	authed := router.Group("/api", auth.Required(jwtSecret))
	authed.GET("/auth/me", currentUser)
	authed.GET("/contacts", findContacts)
	authed.POST("/contacts", createContact)
	authed.POST("/contacts/merge", mergeContacts)
	authed.GET("/contacts/:id", findContactByID)
	authed.PUT("/contacts/:id", updateContactByID)
	authed.DELETE("/contacts/:id", deleteContactByID)
	authed.POST("/contacts/:id/share", shareContactByID)
	authed.GET("/contacts/:id/qr", shareContactQRByID)
	authed.POST("/contacts/:id/sms", sendContactSMS)

	admin := router.Group("/api/admin", auth.Required(jwtSecret), adminOnly)
	admin.GET("/users", findUsers)
	admin.GET("/users/:userId/count", countUserContacts)
	admin.GET("/users/:userId/merges", findUserMerges)

	return router
}

// health reports liveness.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/api/health"
func health(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// contains returns true if a string is present in a slice.
func contains(slice []string, str string) bool {
	for _, v := range slice {
		if v == str {
			return true
		}
	}
	return false
}
