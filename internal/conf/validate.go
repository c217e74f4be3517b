package conf

import (
	"time"

	"github.com/tphakala/reviewharvest-go/internal/errors"
)

// ValidateSettings checks the loaded configuration for values that would
// make a run misbehave. Violations are fatal before any ingestion begins.
func ValidateSettings(settings *Settings) error {
	if settings.Sheet.SpreadsheetID == "" {
		return validationError("sheet.spreadsheetid must be set")
	}
	if settings.Sheet.WorksheetName == "" {
		return validationError("sheet.worksheetname must be set")
	}

	h := &settings.Harvest
	if len(h.Apps) == 0 {
		return validationError("harvest.apps must list at least one tracked app")
	}
	for i := range h.Apps {
		if h.Apps[i].Name == "" || h.Apps[i].ID == "" {
			return errors.Newf("harvest.apps[%d] needs both name and id", i).
				Component("conf").
				Category(errors.CategoryValidation).
				Build()
		}
	}

	if h.LookbackDays < 0 {
		return validationError("harvest.lookbackdays cannot be negative")
	}
	if h.LookbackDays == 0 {
		if _, err := time.ParseInLocation("2006-01-02", h.BackfillStart, time.UTC); err != nil {
			return errors.Newf("harvest.backfillstart %q is not a YYYY-MM-DD date", h.BackfillStart).
				Component("conf").
				Category(errors.CategoryValidation).
				Build()
		}
	}

	if h.MinTextLength < 0 {
		return validationError("harvest.mintextlength cannot be negative")
	}
	if h.MaxRows <= 0 {
		return validationError("harvest.maxrows must be positive")
	}
	if h.PageSize <= 0 {
		return validationError("harvest.pagesize must be positive")
	}
	if h.PageDelayMin < 0 || h.PageDelayMax < h.PageDelayMin {
		return validationError("harvest page delay range is invalid")
	}
	if h.RatePerSecond <= 0 {
		return validationError("harvest.ratepersecond must be positive")
	}

	return nil
}

func validationError(msg string) error {
	return errors.Newf("%s", msg).
		Component("conf").
		Category(errors.CategoryValidation).
		Build()
}
