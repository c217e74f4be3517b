package conf

import (
	"time"

	"github.com/spf13/viper"
)

// defaultApps is the tracked-app list the job ships with; the set of lending
// apps whose Play Store reviews are monitored.
func defaultApps() []TrackedApp {
	return []TrackedApp{
		{Name: "MoneyView", ID: "com.whizdm.moneyview.loans"},
		{Name: "KreditBee", ID: "com.kreditbee.android"},
		{Name: "Navi", ID: "com.naviapp"},
		{Name: "Fibe", ID: "com.earlysalary.android"},
		{Name: "Kissht", ID: "com.fastbanking"},
	}
}

// defaultSettings returns the settings used when no config file exists.
func defaultSettings() *Settings {
	return &Settings{
		Debug: false,
		Sheet: SheetSettings{
			WorksheetName:   "Raw_Reviews",
			CredentialsPath: "/tmp/sa.json",
		},
		Harvest: HarvestSettings{
			Apps:          defaultApps(),
			BackfillStart: "2025-07-01",
			LookbackDays:  0,
			MinTextLength: 30,
			MaxRows:       500000,
			PageSize:      200,
			Language:      "en",
			Country:       "in",
			PageDelayMin:  1 * time.Second,
			PageDelayMax:  3 * time.Second,
			RatePerSecond: 1.0,
			Burst:         2,
		},
	}
}

// setDefaultConfig sets viper defaults for each configuration parameter.
func setDefaultConfig() {
	d := defaultSettings()

	viper.SetDefault("debug", d.Debug)

	viper.SetDefault("sheet.spreadsheetid", d.Sheet.SpreadsheetID)
	viper.SetDefault("sheet.worksheetname", d.Sheet.WorksheetName)
	viper.SetDefault("sheet.credentialspath", d.Sheet.CredentialsPath)

	viper.SetDefault("harvest.apps", d.Harvest.Apps)
	viper.SetDefault("harvest.backfillstart", d.Harvest.BackfillStart)
	viper.SetDefault("harvest.lookbackdays", d.Harvest.LookbackDays)
	viper.SetDefault("harvest.mintextlength", d.Harvest.MinTextLength)
	viper.SetDefault("harvest.maxrows", d.Harvest.MaxRows)
	viper.SetDefault("harvest.pagesize", d.Harvest.PageSize)
	viper.SetDefault("harvest.language", d.Harvest.Language)
	viper.SetDefault("harvest.country", d.Harvest.Country)
	viper.SetDefault("harvest.pagedelaymin", d.Harvest.PageDelayMin)
	viper.SetDefault("harvest.pagedelaymax", d.Harvest.PageDelayMax)
	viper.SetDefault("harvest.ratepersecond", d.Harvest.RatePerSecond)
	viper.SetDefault("harvest.burst", d.Harvest.Burst)
}
