// Command seed populates a development database with a small set of users,
// subjects and grades so the API has data to serve out of the box.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/strawhatacademy/academy-api/internal/models"
	"github.com/strawhatacademy/academy-api/internal/repository"
	"github.com/strawhatacademy/academy-api/pkg/config"
	"github.com/strawhatacademy/academy-api/pkg/database"
)

type seedUser struct {
	username  string
	password  string
	role      models.Role
	firstName string
	lastName  string
}

var seedUsers = []seedUser{
	{"admin", "admin123", models.RoleAdmin, "Site", "Admin"},
	{"nami", "weather123", models.RoleTeacher, "Nami", "Navigator"},
	{"zoro", "santoryu1", models.RoleTeacher, "Roronoa", "Zoro"},
	{"luffy", "gomugomu1", models.RoleStudent, "Monkey", "Luffy"},
	{"usopp", "sniper123", models.RoleStudent, "Usopp", "Sniper"},
}

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall seeding timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	users := repository.NewUserRepository(db)
	subjects := repository.NewSubjectRepository(db)
	grades := repository.NewGradeRepository(db)

	ids := make(map[string]int64, len(seedUsers))
	for _, su := range seedUsers {
		if existing, err := users.FindByUsername(ctx, su.username); err == nil {
			ids[su.username] = existing.ID
			log.Printf("user %q already present, skipping", su.username)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password for %q: %v", su.username, err)
		}
		user := &models.User{
			Username:  su.username,
			Role:      su.role,
			FirstName: su.firstName,
			LastName:  su.lastName,
		}
		if err := users.Register(ctx, user, string(hash)); err != nil {
			log.Fatalf("failed to create user %q: %v", su.username, err)
		}
		ids[su.username] = user.ID
		log.Printf("created user %q with id %d", su.username, user.ID)
	}

	navigation := &models.Subject{Name: "Navigation", TeacherID: ids["nami"]}
	swordsmanship := &models.Subject{Name: "Swordsmanship", TeacherID: ids["zoro"]}
	for _, subject := range []*models.Subject{navigation, swordsmanship} {
		if err := subjects.Create(ctx, subject); err != nil {
			log.Fatalf("failed to create subject %q: %v", subject.Name, err)
		}
		log.Printf("created subject %q with id %d", subject.Name, subject.ID)
	}

	if _, err := subjects.Enroll(ctx, ids["luffy"], navigation.ID); err != nil {
		log.Fatalf("failed to enroll student: %v", err)
	}
	if _, err := subjects.Enroll(ctx, ids["usopp"], swordsmanship.ID); err != nil {
		log.Fatalf("failed to enroll student: %v", err)
	}

	exam := &models.Grade{
		StudentID:    ids["luffy"],
		SubjectID:    navigation.ID,
		Value:        92.5,
		DateRecorded: time.Now().UTC(),
		Type:         models.GradeTypeExam,
	}
	if err := grades.Create(ctx, exam); err != nil {
		log.Fatalf("failed to create grade: %v", err)
	}
	log.Printf("created grade %d", exam.ID)

	log.Println("seeding complete")
}
