package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	natsadapter "github.com/samirrijal/aterpe/internal/adapters/nats"
	"github.com/samirrijal/aterpe/internal/adapters/postgres"
	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/pkg/config"
	"github.com/samirrijal/aterpe/internal/pkg/metrics"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source string      `json:"source"`
	Feeds  []FeedEntry `json:"feeds"`
}

type FeedEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"` // http(s) URL or local file path
}

// feedListing is the wire shape of one record in a listing feed. Everything
// optional stays a pointer so absent and zero keep apart.
type feedListing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	District    string `json:"district"`
	Zip         string `json:"zip"`

	PropertyType string `json:"property_type"`
	RentalType   string `json:"rental_type"`
	Status       string `json:"status"`

	Price   *float64 `json:"price"`
	Deposit *float64 `json:"deposit"`

	Rooms       *int     `json:"rooms"`
	Bathrooms   *int     `json:"bathrooms"`
	AreaSqm     *float64 `json:"area_sqm"`
	Floor       *int     `json:"floor"`
	TotalFloors *int     `json:"total_floors"`

	Parking     bool     `json:"parking"`
	PetsAllowed bool     `json:"pets_allowed"`
	Furnished   bool     `json:"furnished"`
	ShortTerm   bool     `json:"short_term"`
	Options     []string `json:"options"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	AvailableFrom *time.Time `json:"available_from"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("aterpe-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	repo := postgres.NewListingRepo(db)

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Printf("WARN nats unavailable, change events will not be published: %v", err)
		pub = nil
	} else {
		defer pub.Close()
	}

	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("Aterpe listing ingestor — %d feeds from %s", len(manifest.Feeds), manifest.Source)

	// Optional CLI arg: comma-separated feed names to restrict the run
	nameFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			nameFilter[strings.TrimSpace(s)] = true
		}
	}

	client := &http.Client{Timeout: 120 * time.Second}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent feeds

	for _, feed := range manifest.Feeds {
		if len(nameFilter) > 0 && !nameFilter[feed.Name] {
			continue
		}

		wg.Add(1)
		go func(f FeedEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ingestFeed(ctx, repo, pub, client, f); err != nil {
				metrics.IngestErrors.WithLabelValues(f.Name).Inc()
				log.Printf("ERROR [%s]: %v", f.Name, err)
			}
		}(feed)
	}

	wg.Wait()
	log.Println("ingestion complete")
}

// ---------------------------------------------------------------------------
// Per-feed ingestion
// ---------------------------------------------------------------------------

func ingestFeed(ctx context.Context, repo *postgres.ListingRepo, pub *natsadapter.Publisher, client *http.Client, feed FeedEntry) error {
	log.Printf("[%s] fetching %s", feed.Name, feed.URL)

	body, err := fetchFeed(client, feed.URL)
	if err != nil {
		return err
	}

	var records []feedListing
	if err := json.Unmarshal(body, &records); err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}

	const batchSize = 500
	now := time.Now().UTC()

	batch := make([]domain.Listing, 0, batchSize)
	skipped := 0
	removed := 0
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := repo.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		if pub != nil {
			for i := range batch {
				if err := pub.PublishListingUpdated(ctx, &batch[i]); err != nil {
					log.Printf("[%s] publish %s: %v", feed.Name, batch[i].ID, err)
				}
			}
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, rec := range records {
		l, ok := toListing(rec, now)
		if !ok {
			skipped++
			continue
		}

		// Deletions travel through the feed as status=deleted; the row is
		// upserted so the tombstone survives re-runs, and subscribers hear a
		// removal instead of an update.
		if l.Status == domain.StatusDeleted {
			if err := repo.Upsert(ctx, &l); err != nil {
				return fmt.Errorf("upsert tombstone %s: %w", l.ID, err)
			}
			if pub != nil {
				if err := pub.PublishListingRemoved(ctx, l.ID, l.City); err != nil {
					log.Printf("[%s] publish removal %s: %v", feed.Name, l.ID, err)
				}
			}
			removed++
			continue
		}

		batch = append(batch, l)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	metrics.ListingsIngested.WithLabelValues(feed.Name).Add(float64(total))
	log.Printf("[%s] done: %d upserted, %d removed, %d skipped", feed.Name, total, removed, skipped)
	return nil
}

// fetchFeed reads a feed from an http(s) URL or a local file.
func fetchFeed(client *http.Client, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		data, err := os.ReadFile(url)
		if err != nil {
			return nil, fmt.Errorf("read feed file: %w", err)
		}
		return data, nil
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// toListing validates and converts one feed record. Records without an id or
// city are unusable and get skipped.
func toListing(rec feedListing, now time.Time) (domain.Listing, bool) {
	id := strings.TrimSpace(rec.ID)
	city := strings.TrimSpace(rec.City)
	if id == "" || city == "" {
		return domain.Listing{}, false
	}

	status := domain.ListingStatus(strings.TrimSpace(rec.Status))
	switch status {
	case domain.StatusActive, domain.StatusPaused, domain.StatusRented, domain.StatusDeleted:
	case "":
		status = domain.StatusActive
	default:
		return domain.Listing{}, false
	}

	return domain.Listing{
		ID:            id,
		Title:         strings.TrimSpace(rec.Title),
		Description:   rec.Description,
		Address:       strings.TrimSpace(rec.Address),
		City:          city,
		District:      strings.TrimSpace(rec.District),
		Zip:           strings.TrimSpace(rec.Zip),
		PropertyType:  strings.TrimSpace(rec.PropertyType),
		RentalType:    strings.TrimSpace(rec.RentalType),
		Status:        status,
		Price:         rec.Price,
		Deposit:       rec.Deposit,
		Rooms:         rec.Rooms,
		Bathrooms:     rec.Bathrooms,
		AreaSqm:       rec.AreaSqm,
		Floor:         rec.Floor,
		TotalFloors:   rec.TotalFloors,
		Parking:       rec.Parking,
		PetsAllowed:   rec.PetsAllowed,
		Furnished:     rec.Furnished,
		ShortTerm:     rec.ShortTerm,
		Options:       rec.Options,
		Latitude:      rec.Latitude,
		Longitude:     rec.Longitude,
		AvailableFrom: rec.AvailableFrom,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, true
}
