package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"BOT_TOKEN" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"ShiftBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Mongo struct {
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"shiftbot"`
	} `yaml:"mongo"`
	Sheets struct {
		ReportSheetId string `yaml:"report_sheet_id" env:"DAILY_REPORT_SHEET_ID" env-default:""`
		ConfigSheetId string `yaml:"config_sheet_id" env:"BOT_CONFIG_SHEET_ID" env-default:""`
		CredsFile     string `yaml:"creds_file" env:"CREDS_FILE_PATH" env-default:""`
	} `yaml:"sheets"`
	Weather struct {
		Latitude      float64 `yaml:"latitude" env-default:"41.7223"`
		Longitude     float64 `yaml:"longitude" env-default:"44.8046"`
		Timezone      string  `yaml:"timezone" env-default:"Asia/Tbilisi"`
		WorkStartHour int     `yaml:"work_start_hour" env-default:"9"`
		WorkEndHour   int     `yaml:"work_end_hour" env-default:"19"`
		PrecipMin     float64 `yaml:"precip_min" env-default:"0.1"`
		StrongRain    float64 `yaml:"strong_rain" env-default:"2.0"`
		DailyTotal    float64 `yaml:"daily_total" env-default:"5.0"`
		ClearCloud    float64 `yaml:"clear_cloud" env-default:"50"`
		BrokenCloud   float64 `yaml:"broken_cloud" env-default:"80"`
	} `yaml:"weather"`
	OpenAI struct {
		ApiKey  string `yaml:"api_key" env:"OPENAI_API_KEY" env-default:""`
		Model   string `yaml:"model" env-default:"gpt-4o-mini"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"openai"`
	Sync struct {
		IntervalHours int `yaml:"interval_hours" env-default:"0"`
	} `yaml:"sync"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
