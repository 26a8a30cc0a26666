package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"contacts-sync-service/internal/config"
	"contacts-sync-service/internal/database"
	"contacts-sync-service/internal/domain"
	"contacts-sync-service/internal/repository"

	vegeta "github.com/tsenart/vegeta/v12/lib"
	"golang.org/x/crypto/bcrypt"
)

const password = "load-test"

var (
	targetHost = flag.String("target", "http://localhost:8081", "Directory service URL")
	rps        = flag.Int("rps", 5, "Requests per second")
	duration   = flag.Duration("duration", 3*time.Minute, "Attack duration")
	offices    = flag.Int("offices", 20, "Offices to seed")
	perOffice  = flag.Int("per-office", 10, "Contacts per office")
	skipSeed   = flag.Bool("skip-seed", false, "Do not seed the database")
)

var (
	users     []string
	locations []string
)

// Seed
func seedData(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf(".env not found: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	log.Println("Seeding: creating contacts...")

	seeder := repository.NewDirectorySeeder(db)
	contacts := make([]*domain.Contact, 0, *offices**perOffice)
	for o := 1; o <= *offices; o++ {
		location := fmt.Sprintf("Office %02d", o)
		for u := 1; u <= *perOffice; u++ {
			contacts = append(contacts, &domain.Contact{
				UserName:  fmt.Sprintf("load-%d-%d", o, u),
				FirstName: fmt.Sprintf("User_%d", u),
				LastName:  fmt.Sprintf("Office_%d", o),
				Mail:      fmt.Sprintf("load-%d-%d@example.com", o, u),
				Phone:     fmt.Sprintf("38044%03d%04d", o, u),
				Location:  location,
			})
		}
	}

	if err := seeder.Upsert(ctx, contacts, string(hash)); err != nil {
		return err
	}

	log.Printf("Seed completed: offices=%d contacts=%d\n", *offices, len(contacts))
	return nil
}

func prepareTargets() {
	for o := 1; o <= *offices; o++ {
		locations = append(locations, fmt.Sprintf("Office %02d", o))
		for u := 1; u <= *perOffice; u++ {
			users = append(users, fmt.Sprintf("load-%d-%d", o, u))
		}
	}
}

// Targeter
func makeTargeter() vegeta.Targeter {
	return func(t *vegeta.Target) error {
		r := rand.Float64()
		user := users[rand.Intn(len(users))]

		t.Method = http.MethodGet
		t.Body = nil
		t.Header = http.Header{
			"Accept":        {"application/json"},
			"Authorization": {"Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))},
		}

		switch {
		// 50% GET /coworkers
		case r < 0.50:
			t.URL = *targetHost + "/coworkers"

		// 30% GET /search по двум офисам
		case r < 0.80:
			q := url.Values{}
			q.Add("locations", locations[rand.Intn(len(locations))])
			q.Add("locations", locations[rand.Intn(len(locations))])
			t.URL = *targetHost + "/search?" + q.Encode()

		// 15% GET /contacts/:username
		case r < 0.95:
			t.URL = *targetHost + "/contacts/" + users[rand.Intn(len(users))]

		// 5% GET /my
		default:
			t.URL = *targetHost + "/my"
		}
		return nil
	}
}

// Attack
func runAttack() {
	rate := vegeta.Rate{Freq: *rps, Per: time.Second}
	attacker := vegeta.NewAttacker()
	targeter := makeTargeter()

	var metrics vegeta.Metrics

	log.Printf("Starting attack: %s for %s", *targetHost, *duration)
	for res := range attacker.Attack(targeter, rate, *duration, "load-test") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("=== Results ===")
	fmt.Printf("Requests: %d\n", metrics.Requests)
	fmt.Printf("Success rate: %.4f%%\n", metrics.Success*100)
	fmt.Printf("Latency mean: %s\n", metrics.Latencies.Mean)
	fmt.Printf("Latency P95: %s\n", metrics.Latencies.P95)
	fmt.Printf("Latency P99: %s\n", metrics.Latencies.P99)
	for code, count := range metrics.StatusCodes {
		fmt.Printf("Status %s: %d\n", code, count)
	}
}

func main() {
	flag.Parse()

	if !*skipSeed {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := seedData(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
	}

	prepareTargets()
	runAttack()
}
