package main

import (
	"bytes"
	"context"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"picshare/internal/config"
	"picshare/internal/database"
	"picshare/internal/domain"
	"picshare/internal/modules/feed"
	"picshare/internal/pkg/logger"
	"picshare/internal/repository"
	"picshare/internal/storage"
)

// Smallest valid PNG (1x1, transparent), good enough for a demo feed.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM comments")
	db.Exec("DELETE FROM images")
	db.Exec("DELETE FROM users")

	media, err := storage.NewMediaStore(cfg.UploadsDir)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	log.Println("Creating users...")
	users := make([]*domain.User, 0, 2)
	for _, name := range []string{"alice", "bob"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte(name+"123"), bcrypt.DefaultCost)
		u := &domain.User{Username: name, PasswordHash: string(hash)}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatal("user seed failed:", err)
		}
		users = append(users, u)
	}

	log.Println("Creating images...")
	svc := feed.NewService(imageRepo, commentRepo, media, logger.Get())
	descriptions := []string{"first light", "city at dusk", "weekend hike"}
	for i, desc := range descriptions {
		uploader := users[i%len(users)]
		key := seedImage(ctx, media, imageRepo, desc, uploader.ID)
		log.Printf("seeded %s (%s)", desc, key)
	}

	// One demo comment so search-by-comment has something to find.
	listing, err := svc.List(ctx, "", 1, 10)
	if err != nil {
		log.Fatal(err)
	}
	if len(listing.Data) > 0 {
		if _, err := svc.Comment(ctx, listing.Data[0].ID, "great shot!", users[1].ID); err != nil {
			log.Fatal("comment seed failed:", err)
		}
	}

	log.Println("Seed complete.")
}

func seedImage(ctx context.Context, media *storage.MediaStore, images *repository.ImageRepository, description string, uploaderID int64) string {
	key := uuidKey()
	if err := media.Save(key, bytes.NewReader(tinyPNG)); err != nil {
		log.Fatal("file seed failed:", err)
	}
	img := &domain.Image{
		Filename:     key,
		OriginalName: description + ".png",
		URL:          "/uploads/" + key,
		Description:  description,
		UploaderID:   uploaderID,
	}
	if err := images.Create(ctx, img); err != nil {
		log.Fatal("image seed failed:", err)
	}
	return key
}

func uuidKey() string {
	return uuid.New().String() + ".png"
}
