package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/expensedesk/expensectl/internal/api"
	"github.com/expensedesk/expensectl/internal/config"
	"github.com/expensedesk/expensectl/internal/dashboard"
	"github.com/expensedesk/expensectl/internal/domain/entity"
	"github.com/expensedesk/expensectl/internal/form"
	"github.com/expensedesk/expensectl/internal/notify"
	"github.com/expensedesk/expensectl/internal/session"
	"github.com/expensedesk/expensectl/internal/storage"
	"github.com/expensedesk/expensectl/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

const usage = `expensectl - expense management client

Usage:
  expensectl login <email> <password>
  expensectl login --oauth
  expensectl signup <email> <password> <full name>
  expensectl logout
  expensectl whoami
  expensectl dashboard [--category C] [--status S] [--from D] [--to D] [--search Q] [--watch]
  expensectl submit --amount A --category C --date D [--description T] [--priority P] [--attachment F]
  expensectl approve <id>
  expensectl reject <id>
  expensectl export [--format pdf|xlsx] [--all]
  expensectl report [--format pdf|xlsx|png]
  expensectl notifications [--mark-read ID | --mark-all-read | --remove ID | --clear]
  expensectl budget [--set AMOUNT [--category C]]
  expensectl set-role <user id> <role>
`

// app wires the stores and API accessors constructed once at startup and
// passed by reference to every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *api.Client
	auth      *api.AuthAPI
	expenses  *api.ExpenseAPI
	dashAPI   *api.DashboardAPI
	notifAPI  *api.NotificationAPI
	exportAPI *api.ExportAPI
	store     *session.Store
	router    *session.Router
	toasts    *notify.Store
	downloads *storage.DownloadStore
}

func main() {
	_ = gotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	a, err := buildApp(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize client", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		a.flushToasts()
		os.Exit(1)
	}
	a.flushToasts()
}

func configPath() string {
	if p := os.Getenv("EXPENSECTL_CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".expensectl", "config.yaml")
}

func buildApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	client := api.NewClient(api.Config{
		BaseURL:       cfg.Backend.BaseURL,
		Timeout:       cfg.Backend.Timeout,
		RedirectDelay: cfg.Backend.RedirectDelay,
	}, logger)

	fileStorage, err := session.NewFileStorage(cfg.State.Dir)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		auth:      api.NewAuthAPI(client, logger),
		expenses:  api.NewExpenseAPI(client, logger),
		dashAPI:   api.NewDashboardAPI(client, logger),
		notifAPI:  api.NewNotificationAPI(client, logger),
		exportAPI: api.NewExportAPI(client, logger),
		downloads: storage.NewDownloadStore(cfg.State.DownloadsDir, logger),
	}
	a.store = session.NewStore(a.auth, client, fileStorage, logger)
	a.router = session.NewRouter(a.store, logger)
	a.toasts = notify.NewStore(a.notifAPI, a.store, logger)

	client.OnRedirect(func(location string) {
		fmt.Fprintf(os.Stderr, "Session expired. Run 'expensectl login' to sign in again.\n")
	})
	return a, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "signup":
		return a.cmdSignup(ctx, args)
	case "logout":
		a.store.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.cmdWhoami()
	case "dashboard":
		return a.cmdDashboard(ctx, args)
	case "submit":
		return a.cmdSubmit(ctx, args)
	case "approve":
		return a.cmdAct(ctx, args, true)
	case "reject":
		return a.cmdAct(ctx, args, false)
	case "export":
		return a.cmdExport(ctx, args)
	case "report":
		return a.cmdReport(ctx, args)
	case "notifications":
		return a.cmdNotifications(ctx, args)
	case "budget":
		return a.cmdBudget(ctx, args)
	case "set-role":
		return a.cmdSetRole(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	oauth := fs.Bool("oauth", false, "sign in via the OAuth2 provider")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *oauth {
		return a.loginOAuth(ctx)
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: expensectl login <email> <password>")
	}
	identity, err := a.store.Login(ctx, rest[0], rest[1])
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s. Your dashboard: %s\n", identity.FullName, a.router.Home())
	return nil
}

// loginOAuth runs the localhost callback listener and waits for the
// provider redirect to deliver the token and user parameters.
func (a *app) loginOAuth(ctx context.Context) error {
	callback := session.NewCallbackServer(a.cfg.OAuth.CallbackAddr, a.store, a.logger)
	if err := callback.Start(ctx); err != nil {
		return err
	}
	defer callback.Stop()

	fmt.Printf("Waiting for OAuth2 sign-in on http://%s/oauth/callback ...\n", a.cfg.OAuth.CallbackAddr)
	select {
	case <-callback.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	fmt.Printf("Signed in. Your dashboard: %s\n", a.router.Home())
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: expensectl signup <email> <password> <full name>")
	}
	if err := utils.ValidateEmail(args[0]); err != nil {
		return err
	}
	identity, err := a.store.Signup(ctx, api.SignupRequest{
		Email:    args[0],
		Password: args[1],
		FullName: utils.SanitizeString(args[2]),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Account created for %s. Sign in with 'expensectl login'.\n", identity.Email)
	return nil
}

func (a *app) cmdWhoami() error {
	if !a.store.IsAuthenticated() {
		fmt.Println("Not signed in.")
		return nil
	}
	identity := a.store.Identity()
	if identity == nil {
		fmt.Printf("Signed in (opaque identity: %s)\n", a.store.RawUser())
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", identity.FullName, identity.Email, identity.PrimaryRole())
	if claims, err := a.store.TokenClaims(); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Printf("Token expires %s\n", exp.Format(time.RFC1123))
		}
	}
	return nil
}

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	category := fs.String("category", "", "filter by category code")
	status := fs.String("status", "", "filter by approval status")
	from := fs.String("from", "", "filter from date (YYYY-MM-DD)")
	to := fs.String("to", "", "filter to date (YYYY-MM-DD)")
	search := fs.String("search", "", "free-text filter")
	watch := fs.Bool("watch", false, "keep polling notifications")
	if err := fs.Parse(args); err != nil {
		return err
	}

	route := a.router.Resolve(a.routeForIdentity())
	if route == session.RouteLogin {
		return fmt.Errorf("sign in first: expensectl login <email> <password>")
	}

	cfg := dashboard.ConfigForRole(a.store.Identity().PrimaryRole())
	d := dashboard.New(cfg, dashboard.APIs{
		Expense:   a.expenses,
		Dashboard: a.dashAPI,
		Auth:      a.auth,
	}, a.toasts, a.logger)

	d.SetFilter(dashboard.Filter{
		Category: *category,
		Status:   *status,
		DateFrom: *from,
		DateTo:   *to,
		Query:    *search,
	})

	if err := d.Load(ctx); err != nil {
		_, msg := d.CurrentState()
		return fmt.Errorf("failed to load dashboard: %s", msg)
	}
	renderDashboard(d)

	if *watch {
		return a.watchNotifications(ctx)
	}
	return nil
}

func (a *app) routeForIdentity() session.Route {
	if !a.store.IsAuthenticated() {
		return session.RouteEmployee
	}
	return a.router.Home()
}

// watchNotifications runs the notification poller until interrupted.
func (a *app) watchNotifications(ctx context.Context) error {
	manager := notify.NewWorkerManager(a.logger)
	poller := notify.NewPoller(a.toasts, a.logger)
	poller.SetInterval(a.cfg.Notifications.PollInterval)
	manager.Register(poller)

	if err := manager.StartAll(ctx); err != nil {
		return err
	}
	defer manager.StopAll()

	ticker := time.NewTicker(a.cfg.Notifications.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, n := range a.toasts.Notifications() {
				if !n.IsRead {
					fmt.Printf("[%s] %s\n", n.Time, n.Message)
				}
			}
		}
	}
}

func (a *app) cmdSubmit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	amount := fs.String("amount", "", "expense amount")
	category := fs.String("category", "", "category code")
	description := fs.String("description", "", "description")
	date := fs.String("date", "", "expense date (YYYY-MM-DD)")
	priority := fs.String("priority", entity.PriorityMedium, "LOW, MEDIUM or HIGH")
	attachment := fs.String("attachment", "", "receipt file to upload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if form.AutoApprovalLikely(*amount) {
		fmt.Println("Note: amounts at or below the auto-approval threshold are usually approved automatically.")
	}

	submitter := form.NewSubmitter(a.expenses, a.toasts, a.logger)
	f := &form.ExpenseForm{
		Amount:         *amount,
		Category:       *category,
		Description:    *description,
		Date:           *date,
		Priority:       *priority,
		AttachmentPath: *attachment,
	}
	return submitter.Submit(ctx, f, func(created *entity.Expense) {
		fmt.Printf("Created expense #%d (%s)\n", created.ID, created.ApprovalStatus)
	})
}

func (a *app) cmdAct(ctx context.Context, args []string, approve bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: expensectl approve|reject <id>")
	}
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid expense id: %s", args[0])
	}

	cfg := dashboard.ConfigForRole(a.store.Identity().PrimaryRole())
	d := dashboard.New(cfg, dashboard.APIs{
		Expense:   a.expenses,
		Dashboard: a.dashAPI,
		Auth:      a.auth,
	}, a.toasts, a.logger)

	if approve {
		return d.Approve(ctx, id)
	}
	return d.Reject(ctx, id)
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "pdf", "pdf or xlsx")
	all := fs.Bool("all", false, "organisation-wide export (admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exporter := dashboard.NewExporter(a.exportAPI, a.downloads, a.toasts, a.logger)
	path, err := exporter.Export(ctx, *format, *all)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

func (a *app) cmdNotifications(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	markRead := fs.Int64("mark-read", 0, "mark one notification read")
	markAll := fs.Bool("mark-all-read", false, "mark every notification read")
	remove := fs.Int64("remove", 0, "remove one notification")
	clear := fs.Bool("clear", false, "remove every notification")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.toasts.FetchNotifications(ctx); err != nil {
		return err
	}

	switch {
	case *markRead != 0:
		return a.toasts.MarkAsRead(ctx, *markRead)
	case *markAll:
		return a.toasts.MarkAllAsRead(ctx)
	case *remove != 0:
		return a.toasts.RemoveNotification(ctx, *remove)
	case *clear:
		return a.toasts.ClearNotifications(ctx)
	}

	for _, n := range a.toasts.Notifications() {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("%s #%d [%s] %s (%s)\n", marker, n.ID, n.Type, n.Message, n.Time)
	}
	return nil
}

func (a *app) cmdBudget(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("budget", flag.ExitOnError)
	set := fs.Float64("set", 0, "set the monthly budget")
	category := fs.String("category", "", "scope the budget to one category code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *set > 0 {
		if *category != "" {
			if err := a.dashAPI.CreateBudget(ctx, entity.Budget{Category: *category, BudgetLimit: *set}); err != nil {
				return err
			}
			fmt.Printf("Budget for %s set to %.2f\n", *category, *set)
			return nil
		}
		budget, err := a.dashAPI.SetMonthlyBudget(ctx, entity.Budget{BudgetLimit: *set})
		if err != nil {
			return err
		}
		fmt.Printf("Monthly budget set to %.2f\n", budget.BudgetLimit)
		return nil
	}

	budget, err := a.dashAPI.MonthlyBudget(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Monthly budget: %.2f\n", budget.BudgetLimit)
	return nil
}

func (a *app) cmdSetRole(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: expensectl set-role <user id> <role>")
	}
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid user id: %s", args[0])
	}
	if err := a.auth.UpdateUserRole(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Printf("Role of user #%d set to %s\n", id, args[1])
	return nil
}

// flushToasts prints any toasts accumulated during the command, since a
// CLI run ends before their 3s display window does.
func (a *app) flushToasts() {
	for _, t := range a.toasts.Toasts() {
		fmt.Printf("[%s] %s\n", t.Type, t.Message)
	}
}
