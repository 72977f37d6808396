package service

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"gitlab.com/dirk.krummacker/contact-hub/internal/auth"
	"gitlab.com/dirk.krummacker/contact-hub/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// registerRequest is the body of a registration call.
type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"  binding:"required"`
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=8"`
}

// loginRequest is the body of a login call.
type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// register creates a new user account and immediately logs it in, responding with a session
// token and the created user.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/auth/register --request "POST" --include --header "Content-Type: application/json" --data '{"firstName": "Erika", "lastName": "Mustermann", "email": "erika@example.com", "password": "wintermute"}'
func register(c *gin.Context) {
	var request registerRequest
	if err := c.BindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid registration data"})
		return
	}
	hash, err := auth.HashPassword(request.Password)
	if err != nil {
		log.Panicln(err)
	}
	user := model.User{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Email:     request.Email,
		Password:  hash,
	}
	result, err := insertUser.Exec(&user)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "email already registered"})
		return
	}
	if err != nil {
		log.Panicln(err)
	}
	user.Id, err = result.LastInsertId()
	if err != nil {
		log.Panicln(err)
	}
	token, err := auth.IssueSessionToken(jwtSecret, user.Id)
	if err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// login checks the submitted credentials and responds with a session token. Unknown email and
// wrong password are answered identically.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/auth/login --request "POST" --include --header "Content-Type: application/json" --data '{"email": "erika@example.com", "password": "wintermute"}'
func login(c *gin.Context) {
	var request loginRequest
	if err := c.BindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "email and password required"})
		return
	}
	var users []model.User
	if err := selectUserWhereEmail.Select(&users, request.Email); err != nil {
		log.Panicln(err)
	}
	if len(users) == 0 || !auth.CheckPassword(users[0].Password, request.Password) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	token, err := auth.IssueSessionToken(jwtSecret, users[0].Id)
	if err != nil {
		log.Panicln(err)
	}
	c.IndentedJSON(http.StatusOK, gin.H{"token": token, "user": users[0]})
}

// currentUser responds with the account of the authenticated caller.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/auth/me -H "Authorization: Bearer $TOKEN"
func currentUser(c *gin.Context) {
	var users []model.User
	if err := selectUserWhereId.Select(&users, auth.OwnerId(c)); err != nil {
		log.Panicln(err)
	}
	if len(users) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, users[0])
}

// EnsureAdminUser creates the administrator account configured through the ADMIN_EMAIL and
// ADMIN_PASSWORD environment variables if it does not exist yet. It is called once at startup.
func EnsureAdminUser() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var users []model.User
	if err := selectUserWhereEmail.Select(&users, email); err != nil {
		log.Fatal(err)
	}
	if len(users) > 0 {
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal(err)
	}
	admin := model.User{
		FirstName: "Admin",
		LastName:  "User",
		Email:     email,
		Password:  hash,
		IsAdmin:   true,
	}
	if _, err := insertUser.Exec(&admin); err != nil {
		log.Fatal(err)
	}
	log.Println("admin user created")
}
