package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"

	"github.com/ichigozero/todokit/backend/authsvc/pkg/authservice"
	"github.com/ichigozero/todokit/backend/authsvc/pkg/authtransport"
	"github.com/ichigozero/todokit/backend/tasksvc"
	taskfile "github.com/ichigozero/todokit/backend/tasksvc/db/file"
	taskgorm "github.com/ichigozero/todokit/backend/tasksvc/db/gorm"
	"github.com/ichigozero/todokit/backend/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/todokit/backend/tasksvc/pkg/taskservice"
	"github.com/ichigozero/todokit/backend/tasksvc/pkg/tasktransport"
	"github.com/ichigozero/todokit/backend/usersvc"
	userfile "github.com/ichigozero/todokit/backend/usersvc/db/file"
	usergorm "github.com/ichigozero/todokit/backend/usersvc/db/gorm"
	"github.com/ichigozero/todokit/backend/usersvc/pkg/userendpoint"
	"github.com/ichigozero/todokit/backend/usersvc/pkg/userservice"
	"github.com/ichigozero/todokit/backend/usersvc/pkg/usertransport"
)

func main() {
	godotenv.Load()

	fs := flag.NewFlagSet("todokit", flag.ExitOnError)
	var (
		httpAddr = fs.String(
			"http.addr",
			getEnv("HTTP_ADDR", ":3000"),
			"HTTP listen address",
		)
		tasksFile = fs.String(
			"tasks.file",
			getEnv("TASKS_FILE", "db.json"),
			"Path to the task store JSON file",
		)
		usersFile = fs.String(
			"users.file",
			getEnv("USERS_FILE", "auth.json"),
			"Path to the credential store JSON file",
		)
		databaseURL = fs.String(
			"database.url",
			getEnv("DATABASE_URL", ""),
			"PostgreSQL URL; file stores are used when empty",
		)
		sqlitePath = fs.String(
			"database.sqlite",
			getEnv("DATABASE_SQLITE", ""),
			"SQLite path; file stores are used when empty",
		)
		bcryptCost = fs.Int(
			"bcrypt.cost",
			getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
			"bcrypt hashing cost for new passwords",
		)
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	var (
		taskRepository tasksvc.TaskRepository
		userRepository usersvc.UserRepository
	)
	{
		switch {
		case *databaseURL != "" || *sqlitePath != "":
			var db *libgorm.DB
			var err error
			if *databaseURL != "" {
				db, err = libgorm.Open(postgres.Open(*databaseURL), &libgorm.Config{})
			} else {
				db, err = libgorm.Open(sqlite.Open(*sqlitePath), &libgorm.Config{})
			}
			if err != nil {
				logger.Log("err", err)
				os.Exit(1)
			}

			db.AutoMigrate(&tasksvc.Task{}, &usersvc.User{})
			taskRepository = taskgorm.NewTaskRepository(db)
			userRepository = usergorm.NewUserRepository(db)
		default:
			taskRepository = taskfile.NewTaskRepository(*tasksFile)
			userRepository = userfile.NewUserRepository(*usersFile)
		}
	}

	fieldKeys := []string{"method"}

	taskCount := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "todokit",
		Subsystem: "task_service",
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, fieldKeys)
	taskLatency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: "todokit",
		Subsystem: "task_service",
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
	}, fieldKeys)

	userCount := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "todokit",
		Subsystem: "user_service",
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, fieldKeys)
	userLatency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
		Namespace: "todokit",
		Subsystem: "user_service",
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
	}, fieldKeys)

	authService := authservice.New(
		userRepository,
		log.With(logger, "component", "authservice"),
	)

	var taskService taskservice.Service
	{
		taskService = taskservice.NewBasicService(taskRepository)
		taskService = taskservice.LoggingMiddleware(log.With(logger, "component", "taskservice"))(taskService)
		taskService = taskservice.InstrumentingMiddleware(taskCount, taskLatency)(taskService)
	}

	var userService userservice.Service
	{
		userService = userservice.NewBasicService(userRepository, authService, *bcryptCost)
		userService = userservice.LoggingMiddleware(log.With(logger, "component", "userservice"))(userService)
		userService = userservice.InstrumentingMiddleware(userCount, userLatency)(userService)
	}

	// The gate is built from its credential dependency here, before the
	// router is assembled.
	authenticator := authtransport.NewAuthenticator(authService)

	var (
		taskEndpoints = taskendpoint.New(taskService, logger)
		userEndpoints = userendpoint.New(userService, logger)
	)

	r := mux.NewRouter()
	{
		r.PathPrefix("/tasks").Handler(tasktransport.NewHTTPHandler(taskEndpoints, authenticator, logger))
		r.PathPrefix("/users").Handler(usertransport.NewHTTPHandler(userEndpoints, logger))
		r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
		r.Methods("GET").Path("/health").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
	}

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			logger.Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			logger.Log("transport", "HTTP", "addr", *httpAddr)
			return http.Serve(httpListener, r)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
