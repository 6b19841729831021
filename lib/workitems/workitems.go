package workitems

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

const (
	SiteUrlKey   = "SITE_URL"
	AgencyKey    = "AGENCY_NAME"
	InputPathKey = "WORKITEM_INPUT_PATH"
)

// Variables are the parameters a run can be driven by instead of local
// choice.
type Variables struct {
	SiteUrl    string `json:"SITE_URL"`
	AgencyName string `json:"AGENCY_NAME"`
}

// a work item file is either the variables object itself or an object
// wrapping them in "payload"
type workItem struct {
	Variables
	Payload *Variables `json:"payload"`
}

// Load resolves variables from, lowest priority first: the .env file in the
// working directory, the process environment, then the work item file named
// by WORKITEM_INPUT_PATH.
func Load(envFiles ...string) (Variables, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Variables{}, fmt.Errorf("load env file: %w", err)
	}

	vars := Variables{
		SiteUrl:    os.Getenv(SiteUrlKey),
		AgencyName: os.Getenv(AgencyKey),
	}

	path := os.Getenv(InputPathKey)
	if path == "" {
		return vars, nil
	}
	item, err := readWorkItem(path)
	if err != nil {
		return Variables{}, err
	}
	slog.Info("loaded work item", "path", path)
	return vars.Merge(item), nil
}

func readWorkItem(path string) (Variables, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Variables{}, fmt.Errorf("read work item: %w", err)
	}
	var item workItem
	err = json5.Unmarshal(contents, &item)
	if err != nil {
		return Variables{}, fmt.Errorf("parse work item %s: %w", path, err)
	}
	if item.Payload != nil {
		return *item.Payload, nil
	}
	return item.Variables, nil
}

// Merge returns v with every non-empty field of override applied.
func (v Variables) Merge(override Variables) Variables {
	if override.SiteUrl != "" {
		v.SiteUrl = override.SiteUrl
	}
	if override.AgencyName != "" {
		v.AgencyName = override.AgencyName
	}
	return v
}
