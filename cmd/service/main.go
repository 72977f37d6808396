package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gitlab.com/dirk.krummacker/contact-hub/internal/service"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 DBHOST=localhost JWT_SECRET=changeme GIN_MODE=release go run main.go
func main() {
	_ = godotenv.Load()
	service.SetupConfig()
	sqlDB := service.CreateDatabase()
	service.SetupDatabaseWrapper(sqlDB)
	service.EnsureAdminUser()
	router := service.SetupHttpRouter()
	_, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		fmt.Println("could not parse PORT env variable", err)
		panic(err)
	}
	router.Run(":" + os.Getenv("PORT"))
}
