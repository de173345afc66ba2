package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Redis     RedisConfigs
	Event     EventConfigs
	Cron      CronConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type RedisConfigs struct {
	Addr string
}

type EventConfigs struct {
	// AdmissionMaxRetries bounds retries of the admission transaction on
	// transient storage conflicts.
	AdmissionMaxRetries   uint64
	AdmissionRetryBackoff time.Duration

	// SnapshotCacheTTL is how long a non-authoritative eligibility snapshot
	// stays cached.
	SnapshotCacheTTL time.Duration
}

type CronConfigs struct {
	EndedEventInterval time.Duration
}
