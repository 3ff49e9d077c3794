package handlers

import (
	"net/http"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/pkg/middleware"
	"github.com/gorilla/mux"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	User         *UserHandler
	Property     *PropertyHandler
	Lead         *LeadHandler
	Wishlist     *WishlistHandler
	Message      *MessageHandler
	Notification *NotificationHandler
	Relay        *RelayHandler
}

// NewRouter mounts the API under /api plus /ws and /health.
func NewRouter(h *Handlers, jwtSecret string) *mux.Router {
	protect := middleware.AuthMiddleware(jwtSecret)
	listers := middleware.RequireRole(models.RoleSeller, models.RoleAgent, models.RoleAdmin)
	guarded := func(fn http.HandlerFunc) http.Handler { return protect(listers(fn)) }
	authed := func(fn http.HandlerFunc) http.Handler { return protect(fn) }

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
	}).Methods("GET")
	if h.Relay != nil {
		router.HandleFunc("/ws", h.Relay.ServeWS).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", h.User.RegisterUserHandler).Methods("POST")
	auth.HandleFunc("/login", h.User.LoginUserHandler).Methods("POST")
	auth.HandleFunc("/logout", h.User.LogoutHandler).Methods("GET")
	auth.Handle("/me", authed(h.User.GetMeHandler)).Methods("GET")
	auth.Handle("/update-details", authed(h.User.UpdateDetailsHandler)).Methods("PUT")
	auth.Handle("/update-password", authed(h.User.UpdatePasswordHandler)).Methods("PUT")

	// Property routes; radius must be registered before /{id}
	props := api.PathPrefix("/properties").Subrouter()
	props.HandleFunc("/radius", h.Property.GetPropertiesInRadiusHandler).Methods("GET")
	props.HandleFunc("/radius/{zipcode}/{distance}", h.Property.GetPropertiesInZipRadiusHandler).Methods("GET")
	props.HandleFunc("", h.Property.GetPropertiesHandler).Methods("GET")
	props.Handle("", guarded(h.Property.CreatePropertyHandler)).Methods("POST")
	props.HandleFunc("/{id}", h.Property.GetPropertyHandler).Methods("GET")
	props.Handle("/{id}", guarded(h.Property.UpdatePropertyHandler)).Methods("PUT")
	props.Handle("/{id}", guarded(h.Property.DeletePropertyHandler)).Methods("DELETE")
	props.Handle("/{id}/leads", authed(h.Lead.GetPropertyLeadsHandler)).Methods("GET")

	// Lead routes
	leads := api.PathPrefix("/leads").Subrouter()
	leads.Handle("", middleware.OptionalAuth(jwtSecret)(http.HandlerFunc(h.Lead.CreateLeadHandler))).Methods("POST")
	leads.Handle("", authed(h.Lead.GetUserLeadsHandler)).Methods("GET")
	leads.Handle("/{id}", authed(h.Lead.UpdateLeadStatusHandler)).Methods("PUT")

	// Wishlist routes
	wishlist := api.PathPrefix("/wishlist").Subrouter()
	wishlist.Use(protect)
	wishlist.HandleFunc("", h.Wishlist.GetWishlistHandler).Methods("GET")
	wishlist.HandleFunc("/{propertyId}", h.Wishlist.AddToWishlistHandler).Methods("POST")
	wishlist.HandleFunc("/{propertyId}", h.Wishlist.RemoveFromWishlistHandler).Methods("DELETE")

	// Message routes
	messages := api.PathPrefix("/messages").Subrouter()
	messages.Use(protect)
	messages.HandleFunc("/conversations", h.Message.GetConversationsHandler).Methods("GET")
	messages.HandleFunc("/conversations/{conversationId}", h.Message.GetMessagesHandler).Methods("GET")
	messages.HandleFunc("", h.Message.SendMessageHandler).Methods("POST")
	messages.HandleFunc("/{id}", h.Message.DeleteMessageHandler).Methods("DELETE")

	// Notification routes
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Use(protect)
	notifications.HandleFunc("", h.Notification.GetUserNotificationsHandler).Methods("GET")
	notifications.HandleFunc("/read-all", h.Notification.MarkAllAsReadHandler).Methods("PUT")
	notifications.HandleFunc("/{id}/read", h.Notification.MarkAsReadHandler).Methods("PUT")

	router.Use(middleware.LoggingMiddleware)
	return router
}
