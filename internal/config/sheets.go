package config

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/brayvid/news-site/internal/logger"
)

// LoadTunables fetches the run tunables from the config sheet CSV. Failure
// here is fatal to the run: without the sheet there is no way to know the
// user's limits.
func LoadTunables(ctx context.Context, client *http.Client, url string) (Tunables, error) {
	rows, err := fetchCSV(ctx, client, url)
	if err != nil {
		return Tunables{}, fmt.Errorf("failed to load config sheet: %w", err)
	}

	sheet := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		sheet[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}
	logger.Info("Loaded config sheet", "keys", len(sheet))
	return tunablesFrom(sheet), nil
}

// LoadWeights fetches a name,weight CSV. Rows with a non-integer weight are
// skipped with a warning.
func LoadWeights(ctx context.Context, client *http.Client, url string) (map[string]int, error) {
	rows, err := fetchCSV(ctx, client, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights sheet: %w", err)
	}

	weights := make(map[string]int, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		weight, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			logger.Warn("Skipping invalid weight row", "row", strings.Join(row, ","))
			continue
		}
		weights[strings.TrimSpace(row[0])] = weight
	}
	logger.Info("Loaded weights sheet", "entries", len(weights))
	return weights, nil
}

// LoadOverrides fetches the term,directive CSV. Terms and directives are
// lowercased; unknown directives are kept as-is and simply never match "ban"
// or "demote".
func LoadOverrides(ctx context.Context, client *http.Client, url string) (map[string]string, error) {
	rows, err := fetchCSV(ctx, client, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides sheet: %w", err)
	}

	overrides := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		overrides[strings.ToLower(strings.TrimSpace(row[0]))] = strings.ToLower(strings.TrimSpace(row[1]))
	}
	logger.Info("Loaded overrides sheet", "entries", len(overrides))
	return overrides, nil
}

// fetchCSV retrieves a published CSV and returns its data rows, header
// stripped.
func fetchCSV(ctx context.Context, client *http.Client, url string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV from %s: %w", url, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}
