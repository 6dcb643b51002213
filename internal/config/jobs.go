package config

import "time"

type Jobs struct {
	HeartbeatInterval time.Duration `env:"JOBS_HEARTBEAT_INTERVAL" envDefault:"5m"`
	RestockInterval   time.Duration `env:"JOBS_RESTOCK_INTERVAL" envDefault:"12h"`
	ReportInterval    time.Duration `env:"JOBS_REPORT_INTERVAL" envDefault:"168h"`
	RemindersInterval time.Duration `env:"JOBS_REMINDERS_INTERVAL" envDefault:"24h"`

	// ReminderWindow bounds how far back the reminder sweep looks for orders.
	ReminderWindow time.Duration `env:"JOBS_REMINDER_WINDOW" envDefault:"168h"`

	HeartbeatLogPath string `env:"JOBS_HEARTBEAT_LOG_PATH" envDefault:"/tmp/crm_heartbeat_log.txt"`
	RestockLogPath   string `env:"JOBS_RESTOCK_LOG_PATH" envDefault:"/tmp/low_stock_updates_log.txt"`
	ReportLogPath    string `env:"JOBS_REPORT_LOG_PATH" envDefault:"/tmp/crm_report_log.txt"`
	RemindersLogPath string `env:"JOBS_REMINDERS_LOG_PATH" envDefault:"/tmp/order_reminders_log.txt"`
}
