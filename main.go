package main

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/routers"
	"eduhub/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	config.LoadConfig()
	utils.InitErrorReporting(config.AppConfig.RollbarToken, config.AppConfig.AppEnv, version)
	defer utils.FlushErrorReporting()

	utils.InitStripe(config.AppConfig.StripeSecretKey)
	database.ConnectDb()

	if err := os.MkdirAll(config.AppConfig.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	scheduler := utils.InitializeSchedulers()
	defer scheduler.Stop()

	app := routers.NewApp()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
	utils.WaitForEmails()
}
