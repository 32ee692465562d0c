package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/rota-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/rota-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/rota-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/rota-backend-go/internal/repository/postgresql"
	completionService "github.com/cmlabs-hris/rota-backend-go/internal/service/completion"
	"github.com/cmlabs-hris/rota-backend-go/internal/service/reconciliation"
	reportService "github.com/cmlabs-hris/rota-backend-go/internal/service/report"
	rosterService "github.com/cmlabs-hris/rota-backend-go/internal/service/roster"
	timesheetService "github.com/cmlabs-hris/rota-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	entryRepo := postgresql.NewTimesheetEntryRepository(db)
	approvalRepo := postgresql.NewSiteApprovalRepository(db)
	rosterRepo := postgresql.NewRosterRepository(db)
	catalogRepo := postgresql.NewShiftCatalogRepository(db)
	membershipRepo := postgresql.NewMembershipRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	engine := reconciliation.NewEngine(rosterRepo, entryRepo, transactor, cfg.Report.AutofillFallback)
	timesheetSvc := timesheetService.NewTimesheetService(
		transactor,
		timesheetRepo,
		entryRepo,
		approvalRepo,
		catalogRepo,
		membershipRepo,
		membershipRepo,
		engine,
	)
	completionSvc := completionService.NewCompletionService(
		rosterRepo,
		catalogRepo,
		timesheetRepo,
		entryRepo,
		membershipRepo,
		membershipRepo,
	)
	reportSvc := reportService.NewReportService(timesheetSvc, completionSvc, membershipRepo, cfg.Report.ExportSheetName)
	catalogSvc := rosterService.NewCatalogService(catalogRepo)

	timesheetHandler := appHTTP.NewTimesheetHandler(timesheetSvc)
	completionHandler := appHTTP.NewCompletionHandler(completionSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)
	catalogHandler := appHTTP.NewCatalogHandler(catalogSvc)

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		membershipRepo,
		timesheetHandler,
		completionHandler,
		reportHandler,
		catalogHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("server starting", "addr", port, "env", cfg.App.Env)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
