package main

import (
	"quizbank/config"
	"quizbank/database"
	questionRoutes "quizbank/routers/questionRoutes"
	sessionRoutes "quizbank/routers/sessionRoutes"
	topicRoutes "quizbank/routers/topicRoutes"
	userRoutes "quizbank/routers/userRoutes"
	"quizbank/utils"

	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	topicRoutes.SetupTopicRoutes(app)
	questionRoutes.SetupQuestionRoutes(app)
	sessionRoutes.SetupSessionRoutes(app)
	userRoutes.SetupUserRoutes(app)

	utils.StartSessionScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
