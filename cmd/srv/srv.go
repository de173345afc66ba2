package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/snowflake"
	"github.com/droplabz/backend/config"
	"github.com/droplabz/backend/internal/common"
	"github.com/droplabz/backend/internal/domain"
	"github.com/droplabz/backend/internal/domain/eligibility"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/logger"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/droplabz/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx     context.Context
	configs config.Configs

	userRepo      repository.UserRepository
	memberRepo    repository.MemberRepository
	communityRepo repository.CommunityRepository
	eventRepo     repository.EventRepository
	entryRepo     repository.EntryRepository
	winnerRepo    repository.WinnerRepository
	auditLogRepo  repository.AuditLogRepository

	eventDomain  domain.EventDomain
	entryDomain  domain.EntryDomain
	winnerDomain domain.WinnerDomain

	redisClient xredis.Client
	eventLocker *common.EventLocker

	server *http.Server
}

func (s *srv) loadConfig(cliCtx *cli.Context) error {
	s.configs = config.Configs{
		Env: "local",
		Database: config.DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "droplabz",
			User:     "root",
		},
		ApiServer: config.ServerConfigs{Host: "localhost", Port: "8080"},
		Redis:     config.RedisConfigs{Addr: "localhost:6379"},
		Event: config.EventConfigs{
			AdmissionMaxRetries:   3,
			AdmissionRetryBackoff: 50 * time.Millisecond,
			SnapshotCacheTTL:      time.Minute,
		},
		Cron: config.CronConfigs{EndedEventInterval: time.Minute},
	}

	configFile := cliCtx.String("config")
	if _, err := os.Stat(configFile); err == nil {
		if _, err := toml.DecodeFile(configFile, &s.configs); err != nil {
			return err
		}
	}

	if password := os.Getenv("MYSQL_PASSWORD"); password != "" {
		s.configs.Database.Password = password
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		s.configs.Redis.Addr = addr
	}

	s.ctx = xcontext.WithConfigs(context.Background(), s.configs)
	return nil
}

func (s *srv) loadLogger() error {
	level := logger.INFO
	if s.configs.Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
	return nil
}

func (s *srv) loadDatabase() error {
	db, err := gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return entity.MigrateTable(s.ctx)
}

func (s *srv) loadRedis() error {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.redisClient = client
	return nil
}

func (s *srv) loadRepos() error {
	s.userRepo = repository.NewUserRepository()
	s.memberRepo = repository.NewMemberRepository()
	s.communityRepo = repository.NewCommunityRepository()
	s.eventRepo = repository.NewEventRepository()
	s.entryRepo = repository.NewEntryRepository()
	s.winnerRepo = repository.NewWinnerRepository()
	s.auditLogRepo = repository.NewAuditLogRepository()
	return nil
}

func (s *srv) loadDomains() error {
	s.eventLocker = common.NewEventLocker()
	roleVerifier := common.NewCommunityRoleVerifier(s.memberRepo, s.userRepo)
	factProvider := eligibility.NewRedisFactProvider(s.redisClient)

	s.eventDomain = domain.NewEventDomain(
		s.eventRepo, s.communityRepo, s.auditLogRepo, roleVerifier)
	s.entryDomain = domain.NewEntryDomain(
		s.eventRepo, s.entryRepo, s.winnerRepo, s.auditLogRepo,
		roleVerifier, factProvider, s.redisClient, s.eventLocker)
	s.winnerDomain = domain.NewWinnerDomain(
		s.eventRepo, s.entryRepo, s.winnerRepo, s.auditLogRepo,
		roleVerifier, s.eventLocker, nil)

	return nil
}

func (s *srv) load(cliCtx *cli.Context) error {
	for _, phase := range []func() error{
		func() error { return s.loadConfig(cliCtx) },
		s.loadLogger,
		s.loadDatabase,
		s.loadRedis,
		s.loadRepos,
		s.loadDomains,
	} {
		if err := phase(); err != nil {
			return err
		}
	}

	return nil
}
