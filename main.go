package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"taskflow-project/taskflow-service/analytics"
	"taskflow-project/taskflow-service/handlers"
	"taskflow-project/taskflow-service/logging"
	"taskflow-project/taskflow-service/middleware"
	"taskflow-project/taskflow-service/notifications"
	"taskflow-project/taskflow-service/reporting"
	"taskflow-project/taskflow-service/services"
	"taskflow-project/taskflow-service/store"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting TaskFlow Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	dataFile := os.Getenv("TASKFLOW_DATA_FILE")
	ds, err := store.NewDataStore(dataFile)
	if err != nil {
		logging.Logger.Fatalf("Event ID: STORE_INIT_FAILED, Description: Could not initialize data store: %v", err)
	}
	if dataFile != "" {
		logging.Logger.Infof("Event ID: STORE_READY, Description: Data store loaded, snapshots persist to %s", dataFile)
	}

	notifier := notifications.NewNotificationService()
	emitter := notifications.NewTaskEventEmitter(notifier, ds)

	if webhookURL := os.Getenv("NOTIFY_WEBHOOK_URL"); webhookURL != "" {
		forwarder := notifications.NewWebhookForwarder(webhookURL)
		notifier.Subscribe(notifications.EventTaskCreated, forwarder.Handle)
		notifier.Subscribe(notifications.EventTaskCompleted, forwarder.Handle)
		notifier.Subscribe(notifications.EventMention, forwarder.Handle)
		notifier.Subscribe(notifications.EventSprintCompleted, forwarder.Handle)
		logging.Logger.Infof("Event ID: WEBHOOK_ENABLED, Description: Forwarding events to %s", webhookURL)
	}

	memberService := services.NewMemberService(ds)
	projectService := services.NewProjectService(ds)
	tagService := services.NewTagService(ds)
	sprintService := services.NewSprintService(ds, emitter)
	taskService := services.NewTaskService(ds, emitter)
	analyticsService := analytics.NewAnalyticsService(ds)
	reportGenerator := reporting.NewReportGenerator(ds)

	validate := validator.New()

	memberHandler := handlers.NewMemberHandler(memberService, validate)
	projectHandler := handlers.NewProjectHandler(projectService, reportGenerator, validate)
	tagHandler := handlers.NewTagHandler(tagService, validate)
	sprintHandler := handlers.NewSprintHandler(sprintService, validate)
	taskHandler := handlers.NewTaskHandler(taskService, validate)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, reportGenerator)
	notificationHandler := handlers.NewNotificationHandler(notifier)

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/members/register", memberHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/members/login", memberHandler.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth)

	api.HandleFunc("/members", memberHandler.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberID}", memberHandler.GetMember).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberID}/profile", memberHandler.UpdateProfile).Methods(http.MethodPatch)
	api.HandleFunc("/members/{memberID}/deactivate", memberHandler.DeactivateMember).Methods(http.MethodPost)
	api.HandleFunc("/members/{memberID}/role", memberHandler.ChangeRole).Methods(http.MethodPut)
	api.HandleFunc("/members/{memberID}/reset-password", memberHandler.ResetPassword).Methods(http.MethodPost)

	api.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}", projectHandler.GetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}", projectHandler.UpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{projectID}/archive", projectHandler.ArchiveProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/members", projectHandler.GetProjectMembers).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}/members/{memberID}", projectHandler.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/members/{memberID}", projectHandler.RemoveMember).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectID}/export/tasks", projectHandler.ExportTasksCSV).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}/export/members", projectHandler.ExportMembersCSV).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}/summary", projectHandler.ProjectSummary).Methods(http.MethodGet)

	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/search", taskHandler.SearchTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/comments", taskHandler.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}/comments/{commentID}", taskHandler.EditComment).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskID}/comments/{commentID}", taskHandler.DeleteComment).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/hierarchy", taskHandler.TaskHierarchy).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectID}/tasks/by-priority", taskHandler.TasksByPriority).Methods(http.MethodGet)

	api.HandleFunc("/sprints", sprintHandler.CreateSprint).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{sprintID}", sprintHandler.GetSprint).Methods(http.MethodGet)
	api.HandleFunc("/sprints/{sprintID}/activate", sprintHandler.ActivateSprint).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{sprintID}/complete", sprintHandler.CompleteSprint).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectID}/sprints", sprintHandler.ListSprints).Methods(http.MethodGet)

	api.HandleFunc("/tags", tagHandler.CreateTag).Methods(http.MethodPost)
	api.HandleFunc("/tags", tagHandler.ListTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/{tagID}", tagHandler.GetTag).Methods(http.MethodGet)

	api.HandleFunc("/analytics/projects/{projectID}/stats", analyticsHandler.ProjectStats).Methods(http.MethodGet)
	api.HandleFunc("/analytics/projects/{projectID}/workload", analyticsHandler.WorkloadReport).Methods(http.MethodGet)
	api.HandleFunc("/analytics/projects/{projectID}/velocity", analyticsHandler.VelocityTrend).Methods(http.MethodGet)
	api.HandleFunc("/analytics/projects/{projectID}/performance", analyticsHandler.TeamPerformance).Methods(http.MethodGet)
	api.HandleFunc("/analytics/projects/{projectID}/blocked", analyticsHandler.BlockedTasks).Methods(http.MethodGet)
	api.HandleFunc("/analytics/sprints/{sprintID}/stats", analyticsHandler.SprintStats).Methods(http.MethodGet)
	api.HandleFunc("/analytics/sprints/{sprintID}/burndown", analyticsHandler.BurndownData).Methods(http.MethodGet)
	api.HandleFunc("/analytics/sprints/{sprintID}/report", analyticsHandler.SprintReport).Methods(http.MethodGet)

	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", notificationHandler.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationID}/read", notificationHandler.MarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications", notificationHandler.ClearInbox).Methods(http.MethodDelete)
	api.HandleFunc("/notifications/events", notificationHandler.GetEventLog).Methods(http.MethodGet)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	serverAddress := fmt.Sprintf(":%s", serverPort)

	// Snapshot the store on SIGINT/SIGTERM before exiting.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Logger.Infof("Event ID: SERVICE_SHUTDOWN, Description: Received signal %s, saving snapshot...", sig)
		if err := ds.Save(""); err != nil {
			logging.Logger.Errorf("Event ID: SNAPSHOT_SAVE_FAILED, Description: Could not save snapshot: %v", err)
		}
		os.Exit(0)
	}()

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)
	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
