package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ikkim/bizreview-backend/config"
	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/repository"
	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/ikkim/bizreview-backend/internal/db"
	"github.com/ikkim/bizreview-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// numericColumns are written as JSON numbers when the cell holds an integer
// in canonical form. Cells like "02139" stay strings.
var numericColumns = map[string]bool{
	"owner_id": true,
	"zip_code": true,
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [-y]")
	}
	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "-y"

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if cfg.Store.Driver == config.StoreMemory {
		log.Fatal("STORE_DRIVER=memory keeps nothing after the seed exits; use postgres or redis")
	}

	store, err := db.OpenStore(cfg)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer store.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	payloads, skipped, err := readBusinessesFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Businesses to import: %d (skipped rows: %d)\n", len(payloads), skipped)

	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	businessRepo := repository.NewBusinessRepository(store)
	reviewRepo := repository.NewReviewRepository(store)
	businessService := service.NewBusinessService(store, businessRepo, reviewRepo, nil)

	created, failed := importBusinesses(context.Background(), businessService, payloads)
	fmt.Println("Import completed")
	fmt.Printf("Created: %d, failed: %d\n", created, failed)
}

// importBusinesses creates each row through the business service so the API
// validation applies to seeded data too.
func importBusinesses(ctx context.Context, businesses service.BusinessService, payloads []model.Payload) (created, failed int) {
	for i, payload := range payloads {
		if _, err := businesses.CreateBusiness(ctx, payload); err != nil {
			logger.Warn("Failed to import row", map[string]interface{}{
				"row":   i + 2,
				"error": err.Error(),
			})
			failed++
			continue
		}
		created++
	}
	return created, failed
}

// readBusinessesFromXLSX reads the first sheet. The header row names the
// columns; column order is free and extra columns are ignored. Rows missing
// any business attribute are skipped.
func readBusinessesFromXLSX(filePath string) ([]model.Payload, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, name := range model.BusinessRequiredAttributes {
		if _, ok := columns[name]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", name)
		}
	}

	var payloads []model.Payload
	skipped := 0
	for _, row := range rows[1:] {
		payload, ok := rowPayload(row, columns)
		if !ok {
			skipped++
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads, skipped, nil
}

func rowPayload(row []string, columns map[string]int) (model.Payload, bool) {
	payload := make(model.Payload, len(model.BusinessRequiredAttributes))
	for _, name := range model.BusinessRequiredAttributes {
		idx := columns[name]
		if idx >= len(row) {
			return nil, false
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			return nil, false
		}

		var value interface{} = cell
		if numericColumns[name] {
			if n, err := strconv.ParseInt(cell, 10, 64); err == nil && strconv.FormatInt(n, 10) == cell {
				value = n
			}
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, false
		}
		payload[name] = raw
	}
	return payload, true
}
