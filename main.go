package main

import (
	"log"
	"net/http"
	"workmill/account"
	"workmill/authority"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/domain/pile"
	"workmill/domain/workitem"
	"workmill/eligibility"
	"workmill/event"
	"workmill/persistence"
	"workmill/servehttp"
	"workmill/session"
	"workmill/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database conneciton failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(&domain.WorkItem{}, &domain.Pile{}, &event.EventRecord{},
		&account.User{}, &account.UserRoleBinding{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		log.Fatalf("security bootstrap failed %v\n", err)
	}

	event.EventHandlers = append(event.EventHandlers, event.AuditLogHandler)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "workmill")
	})

	itemRepo := workitem.NewGormWorkItemRepository(ds)
	privileges := authority.NewPrivilegeChecker(authority.LoadStaticPrivileges())
	workItemSvc := workitem.NewWorkItemManager(itemRepo, privileges, eligibility.AllowAll())
	pileSvc := pile.NewPileManager(pile.NewGormPileRepository(ds), workItemSvc, itemRepo)

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterWorkItemHandler(engine, workItemSvc, session.SimpleAuthFilter())
	servehttp.RegisterPileHandler(engine, pileSvc, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
