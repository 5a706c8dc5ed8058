package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/communication"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/email"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/energy"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/environment"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/locking"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/tasks"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCacheSize = 1024

func main() {
	var logging logger.Interface = logger.Logger{}
	logging.Info("Server is starting up...")

	environment.Initialize()

	client, err := mongo.NewClient(options.Client().ApplyURI(environment.Global.DatabaseUrl))
	if err != nil {
		log.Fatal(err)
	}

	var ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = client.Connect(ctx)
	if err != nil {
		log.Panic(err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Panic(err)
	}

	defer func() {
		err := client.Disconnect(ctx)
		if err != nil {
			logging.Fatal(err)
		}
	}()

	logging.Info("Database connected")

	db := client.Database(environment.Global.Database)

	userCollection := db.Collection("Users")
	windowCollection := db.Collection("EnergyWindows")
	taskCollection := db.Collection("Tasks")

	// A single instance runs on the in-memory locker and cache; once a
	// Redis address is configured both move there so multiple instances
	// agree on locks and cached users
	var locker locking.LockerInterface
	var userCache users.UserCacheInterface
	if environment.Global.Redis != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     environment.Global.Redis,
			Password: environment.Global.RedisPassword,
		})

		err = redisClient.Ping(ctx).Err()
		if err != nil {
			log.Panic(err)
		}

		locker = locking.NewLockerRedis(redisClient)
		userCache = users.NewUserCacheRedis(redisClient)
		logging.Info("Redis connected")
	} else {
		locker = locking.NewLockerMemory()
		userCache, err = users.NewUserCacheMemory(userCacheSize)
		if err != nil {
			log.Panic(err)
		}
	}

	var emailService email.Mailer = &email.LogService{Logger: logging}
	if environment.Global.Sendinblue != "" {
		emailService = email.NewSendInBlueService(environment.Global.Sendinblue)
	}

	responseManager := communication.ResponseManager{Logger: logging}

	var userRepository users.UserRepositoryInterface = &users.UserRepository{DB: userCollection, Logger: logging}
	var windowRepository energy.WindowRepositoryInterface = energy.WindowRepository{DB: windowCollection, Logger: logging}
	var taskRepository tasks.TaskRepositoryInterface = &tasks.TaskRepository{DB: taskCollection, Logger: logging}

	userHandler := users.Handler{
		UserRepository:  userRepository,
		UserCache:       userCache,
		Logger:          logging,
		ResponseManager: &responseManager,
		Secret:          environment.Global.Secret,
		EmailService:    emailService,
	}

	windowHandler := energy.Handler{
		WindowRepository: windowRepository,
		UserRepository:   userRepository,
		UserCache:        userCache,
		TaskAssignments:  taskRepository,
		Logger:           logging,
		ResponseManager:  &responseManager,
	}

	taskHandler := tasks.Handler{
		TaskRepository:  taskRepository,
		UserRepository:  userRepository,
		UserCache:       userCache,
		Logger:          logging,
		ResponseManager: &responseManager,
	}

	scheduleHandler := tasks.ScheduleHandler{
		TaskRepository:   taskRepository,
		WindowRepository: windowRepository,
		Locker:           locker,
		Logger:           logging,
		ResponseManager:  &responseManager,
	}

	authMiddleware := auth.AuthenticationMiddleware{
		ResponseManager: &responseManager,
		Secret:          environment.Global.Secret,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)

		_, err := fmt.Fprint(writer, "Welcome to the TaskRhythm API! ✔")
		if err != nil {
			log.Printf("Error: %v\n", err)
		}
	})

	unauthenticated := r.PathPrefix("/v1/auth").Subrouter()
	unauthenticated.HandleFunc("/register", userHandler.UserRegister).Methods(http.MethodPost)
	unauthenticated.HandleFunc("/login", userHandler.UserLogin).Methods(http.MethodPost)
	unauthenticated.HandleFunc("/refresh", userHandler.UserRefresh).Methods(http.MethodPost)
	unauthenticated.HandleFunc("/register/verify", userHandler.VerifyRegistrationGet).Methods(http.MethodGet)

	authenticated := r.PathPrefix("/v1").Subrouter()
	authenticated.Use(authMiddleware.Middleware)

	authenticated.HandleFunc("/user", userHandler.UserGet).Methods(http.MethodGet)

	authenticated.HandleFunc("/windows", windowHandler.WindowAdd).Methods(http.MethodPost)
	authenticated.HandleFunc("/windows", windowHandler.GetAllWindows).Methods(http.MethodGet)
	authenticated.HandleFunc("/windows/{windowID}", windowHandler.WindowGet).Methods(http.MethodGet)
	authenticated.HandleFunc("/windows/{windowID}", windowHandler.WindowUpdate).Methods(http.MethodPut)
	authenticated.HandleFunc("/windows/{windowID}", windowHandler.WindowDelete).Methods(http.MethodDelete)

	authenticated.HandleFunc("/tasks", taskHandler.TaskAdd).Methods(http.MethodPost)
	authenticated.HandleFunc("/tasks", taskHandler.GetAllTasks).Methods(http.MethodGet)
	authenticated.HandleFunc("/tasks/{taskID}", taskHandler.TaskGet).Methods(http.MethodGet)
	authenticated.HandleFunc("/tasks/{taskID}", taskHandler.TaskUpdate).Methods(http.MethodPut)
	authenticated.HandleFunc("/tasks/{taskID}", taskHandler.TaskDelete).Methods(http.MethodDelete)

	authenticated.HandleFunc("/schedule", scheduleHandler.ScheduleGet).Methods(http.MethodGet)
	authenticated.HandleFunc("/schedule/generate", scheduleHandler.ScheduleGenerate).Methods(http.MethodPost)
	authenticated.HandleFunc("/schedule/clear", scheduleHandler.ScheduleClear).Methods(http.MethodPost)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Content-Type", "application/json")
			if environment.Global.Cors != "" {
				w.Header().Set("Access-Control-Allow-Origin", environment.Global.Cors)
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
			next.ServeHTTP(w, r)
		})
	})

	port := environment.Global.Port
	if port == "" {
		port = "80"
	}

	logging.Info(fmt.Sprintf("Listening on port %s", port))
	log.Panic(http.ListenAndServe(":"+port, r))
}
