package main

import (
	"codelive/internal/model"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds a demo session for local development so the frontend has
// something to join without going through the trainer flow first.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "codelive"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	sessions := client.Database(database).Collection("sessions")

	now := time.Now()
	session := model.Session{
		JoinCode:  "DEMO42",
		Title:     "Demo: Python Basics",
		Language:  "python",
		TrainerID: "t_demo",
		IsActive:  true,
		StartedAt: now,
		CreatedAt: now,
		Broadcast: &model.Snapshot{
			Code:      "print(\"hello, class\")",
			Language:  "python",
			UpdatedAt: now,
		},
		Participants: []model.Participant{},
		Scratchpads:  map[string]*model.Snapshot{},
	}

	if _, err := sessions.InsertOne(ctx, session); err != nil {
		log.Fatalf("Failed to insert demo session: %v", err)
	}

	fmt.Printf("Successfully created demo session '%s' for trainer '%s'\n", session.JoinCode, session.TrainerID)
}
