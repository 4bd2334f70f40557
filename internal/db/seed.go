package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears users, preferences, interests, likes, matches and messages.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords and
//     saved preferences.
//  3. Generates likes with roughly every 3rd pair mutual, materializing the
//     corresponding canonical match rows.
//  4. Drops a short conversation into each match.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "matches", "likes", "user_interests", "preferences", "interests", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// --- Interest catalog ---
	interests := []Interest{
		{Name: "cooking"}, {Name: "hiking"}, {Name: "movies"},
		{Name: "music"}, {Name: "photography"}, {Name: "travel"},
	}
	if err := db.Create(&interests).Error; err != nil {
		return fmt.Errorf("failed to seed interests: %w", err)
	}

	// --- Users + preferences ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	genders := [2]string{"male", "female"}
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		gender := genders[i%2]
		age := 20 + r.Intn(15)
		users = append(users, User{
			ID:           uint64(i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			FirstName:    fmt.Sprintf("User%d", i),
			LastName:     "Demo",
			Gender:       gender,
			BirthDate:    time.Now().UTC().AddDate(-age, 0, 0),
			Bio:          fmt.Sprintf("Hi, I am user %d", i),
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	for _, u := range users {
		interestedIn := "female"
		if u.Gender == "female" {
			interestedIn = "male"
		}
		pref := Preference{
			UserID:       u.ID,
			InterestedIn: interestedIn,
			MinAge:       18,
			MaxAge:       40,
			Location:     "Bangkok",
			MaxDistance:  50,
		}
		if err := db.Create(&pref).Error; err != nil {
			return fmt.Errorf("failed to seed preferences: %w", err)
		}
		links := []UserInterest{
			{UserID: u.ID, InterestID: interests[r.Intn(len(interests))].ID},
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return fmt.Errorf("failed to seed user interests: %w", err)
		}
	}

	// --- Likes, with every 3rd like reciprocated into a match ---
	var matches []Match
	for i := 0; i < 40; i++ {
		from := uint64(1 + r.Intn(20))
		to := uint64(1 + r.Intn(20))
		if from == to {
			continue
		}

		like := Like{FromUserID: from, ToUserID: to}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return fmt.Errorf("failed to seed likes: %w", err)
		}

		if i%3 == 0 {
			back := Like{FromUserID: to, ToUserID: from}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&back).Error; err != nil {
				return fmt.Errorf("failed to seed likes: %w", err)
			}
			user1, user2 := CanonicalPair(from, to)
			match := Match{User1ID: user1, User2ID: user2}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
				DoNothing: true,
			}).Create(&match).Error; err != nil {
				return fmt.Errorf("failed to seed matches: %w", err)
			}
		}
	}
	if err := db.Find(&matches).Error; err != nil {
		return err
	}

	// --- Conversations ---
	openers := []string{"Hey there!", "Hi, how was your weekend?", "Nice to match with you :)"}
	for _, m := range matches {
		msgs := []Message{
			{MatchID: m.ID, SenderID: m.User1ID, Content: openers[r.Intn(len(openers))]},
			{MatchID: m.ID, SenderID: m.User2ID, Content: "Hi! Glad we matched."},
		}
		if err := db.Create(&msgs).Error; err != nil {
			return fmt.Errorf("failed to seed messages: %w", err)
		}
	}

	log.Printf("seeded %d users, %d matches", len(users), len(matches))
	return nil
}
