// Command lead-import loads a CSV of cold-call prospects into the leads
// table. Expected columns: business_name, phone, website, contact_name,
// state. Rows with an unparseable phone or a phone already on file are
// skipped and reported.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/db"
	"dialer_portal_backend/platform/logger"
	"dialer_portal_backend/platform/phone"
)

func main() {
	if len(os.Args) != 2 {
		panic("usage: lead-import <csv-file>")
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting lead import", "file", os.Args[1])

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Error("failed to open csv", "error", err)
		panic("failed to open csv: " + err.Error())
	}
	defer file.Close()

	repo := repository.New(pool)
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		log.Error("failed to read csv header", "error", err)
		panic("failed to read csv header: " + err.Error())
	}
	columns := indexColumns(header)
	for _, required := range []string{"business_name", "phone", "state"} {
		if _, ok := columns[required]; !ok {
			panic("csv missing required column: " + required)
		}
	}

	var imported, skipped int
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("failed to read csv row", "line", line, "error", err)
			skipped++
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		rawPhone := field("phone")
		if field("business_name") == "" || rawPhone == "" {
			log.Warn("skipping row with missing fields", "line", line)
			skipped++
			continue
		}

		if !phone.IsValid(rawPhone) {
			log.Warn("skipping row with invalid phone", "line", line, "phone", rawPhone)
			skipped++
			continue
		}
		normalized := phone.NormalizeE164(rawPhone)

		if _, err := repo.GetLeadByPhone(ctx, normalized); err == nil {
			log.Info("skipping duplicate phone", "line", line, "phone", normalized)
			skipped++
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			log.Error("lookup failed", "line", line, "error", err)
			skipped++
			continue
		}

		params := repository.CreateLeadParams{
			BusinessName: field("business_name"),
			Phone:        normalized,
			State:        strings.ToUpper(field("state")),
			MaxAttempts:  cfg.GetDefaultMaxAttempts(),
		}
		if website := field("website"); website != "" {
			params.Website = &website
		}
		if contact := field("contact_name"); contact != "" {
			params.ContactName = &contact
		}

		if _, err := repo.CreateLead(ctx, params); err != nil {
			log.Error("failed to insert lead", "line", line, "error", err)
			skipped++
			continue
		}
		imported++
	}

	log.Info("lead import complete", "imported", imported, "skipped", skipped)
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}
