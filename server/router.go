package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/finzlab/go-comdirect"
	"github.com/gin-gonic/gin"
)

func initRouter(s *Server) {
	// The token endpoint is the only route outside /api and the only
	// one without the correlation header requirement.
	s.r.POST("/oauth/token", s.handlePostOAuthToken())

	if api := s.r.Group("/api", s.requireRequestInfo()); api != nil {
		if session := api.Group("/session/clients/user/v1", s.requireAuth(false)); session != nil {
			session.GET("/sessions", s.handleGetSessions())
			session.POST("/sessions/:sessionID/validate", s.handlePostSessionValidate())
			session.PATCH("/sessions/:sessionID", s.handlePatchSession())
			session.GET("/sessions/:sessionID/tan/:challengeID", s.handleGetTANStatus())
		}

		if banking := api.Group("/banking", s.requireAuth(true)); banking != nil {
			banking.GET("/clients/user/v2/accounts/balances", s.handleGetAccountBalances())
			banking.GET("/v2/accounts/:accountID/balances", s.handleGetAccountBalance())
			banking.GET("/v1/accounts/:accountID/transactions", s.handleGetAccountTransactions())
		}

		if brokerage := api.Group("/brokerage", s.requireAuth(true)); brokerage != nil {
			brokerage.GET("/clients/user/v3/depots", s.handleGetDepots())
			brokerage.GET("/v3/depots/:depotID/positions", s.handleGetDepotPositions())
			brokerage.GET("/v3/depots/:depotID/transactions", s.handleGetDepotTransactions())
			brokerage.GET("/v1/instruments/:instrumentID", s.handleGetInstrument())
		}

		if messages := api.Group("/messages", s.requireAuth(true)); messages != nil {
			messages.GET("/clients/user/v2/documents", s.handleGetDocuments())
			messages.GET("/v2/documents/:documentID", s.handleGetDocumentBlob())
		}
	}
}

// Call represents a call received by the server.
type Call struct {
	URL    *url.URL
	Method string
	Status int

	RequestHeader http.Header
	RequestBody   []byte

	ResponseHeader http.Header
}

type callWatcher struct {
	fn    func(Call)
	paths map[string]struct{}
}

func newCallWatcher(fn func(Call), paths ...string) callWatcher {
	watchPaths := make(map[string]struct{}, len(paths))

	for _, path := range paths {
		watchPaths[path] = struct{}{}
	}

	return callWatcher{
		fn:    fn,
		paths: watchPaths,
	}
}

func (watcher *callWatcher) isWatching(path string) bool {
	if len(watcher.paths) == 0 {
		return true
	}

	_, ok := watcher.paths[path]

	return ok
}

func (s *Server) logCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte

		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		c.Next()

		s.callWatchersLock.RLock()
		defer s.callWatchersLock.RUnlock()

		for _, watcher := range s.callWatchers {
			if watcher.isWatching(c.Request.URL.Path) {
				watcher.fn(Call{
					URL:    c.Request.URL,
					Method: c.Request.Method,
					Status: c.Writer.Status(),

					RequestHeader: c.Request.Header.Clone(),
					RequestBody:   body,

					ResponseHeader: c.Writer.Header().Clone(),
				})
			}
		}
	}
}

func (s *Server) handleOffline() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.offline {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
	}
}

// requireRequestInfo enforces the x-http-request-info correlation
// header on every /api route, as the real API does.
func (s *Server) requireRequestInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		var info struct {
			ClientRequestID struct {
				SessionID string `json:"sessionId"`
				RequestID string `json:"requestId"`
			} `json:"clientRequestId"`
		}

		if err := json.Unmarshal([]byte(c.GetHeader("x-http-request-info")), &info); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		if info.ClientRequestID.SessionID == "" || info.ClientRequestID.RequestID == "" {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
	}
}

func (s *Server) requireAuth(needBanking bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")
		if !strings.HasPrefix(bearer, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		value := strings.TrimPrefix(bearer, "Bearer ")

		userID, err := s.b.VerifyToken(value, needBanking)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("userID", userID)
		c.Set("token", value)
	}
}

func (s *Server) handlePostOAuthToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, clientSecret := c.PostForm("client_id"), c.PostForm("client_secret")

		if clientID == "" || clientSecret == "" || (s.clientID != "" && (clientID != s.clientID || clientSecret != s.clientSecret)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
			return
		}

		var (
			auth comdirect.Auth
			err  error
		)

		switch grantType := c.PostForm("grant_type"); grantType {
		case "password":
			auth, err = s.b.NewAuth(c.PostForm("username"), c.PostForm("password"))

		case "refresh_token":
			auth, err = s.b.RefreshAuth(c.PostForm("refresh_token"))

		case "cd_secondary":
			auth, err = s.b.SecondaryAuth(c.PostForm("token"))

		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
			return
		}

		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_grant", "error_description": err.Error()})
			return
		}

		c.JSON(http.StatusOK, auth)
	}
}

func (s *Server) handleGetSessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.b.GetSessions(c.GetString("userID")))
	}
}

func (s *Server) handlePostSessionValidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionID")

		challengeID, err := s.b.NewChallenge(sessionID, c.GetString("userID"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		header := s.validateHeader

		if header == "" {
			b, err := json.Marshal(comdirect.TANChallenge{
				ID:             challengeID,
				Type:           comdirect.TANTypePush,
				AvailableTypes: []string{comdirect.TANTypePush, comdirect.TANTypeMobile},
				Link: comdirect.Link{
					Href: "/api/session/clients/user/v1/sessions/" + sessionID + "/tan/" + challengeID,
				},
			})
			if err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}

			header = string(b)
		}

		if !s.dropValidateHeader {
			c.Header("x-once-authentication-info", header)
		}

		c.JSON(http.StatusCreated, gin.H{})
	}
}

func (s *Server) handleGetTANStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, ok := s.b.PollChallenge(c.Param("challengeID"))
		if !ok {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}

func (s *Server) handlePatchSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var once struct {
			ID string `json:"id"`
		}

		if err := json.Unmarshal([]byte(c.GetHeader("x-once-authentication-info")), &once); err != nil || once.ID == "" {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		session, err := s.b.ActivateSession(c.Param("sessionID"), once.ID, c.GetString("token"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

func (s *Server) handleGetAccountBalances() gin.HandlerFunc {
	return func(c *gin.Context) {
		balances, err := s.b.GetAccountBalances(c.GetString("userID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, balances)
	}
}

func (s *Server) handleGetAccountBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		balance, err := s.b.GetAccountBalance(c.GetString("userID"), c.Param("accountID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, balance)
	}
}

func (s *Server) handleGetAccountTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		transactions, err := s.b.GetAccountTransactions(c.GetString("userID"), c.Param("accountID"), c.Query("transactionState"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, transactions)
	}
}

func (s *Server) handleGetDepots() gin.HandlerFunc {
	return func(c *gin.Context) {
		depots, err := s.b.GetDepots(c.GetString("userID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, depots)
	}
}

func (s *Server) handleGetDepotPositions() gin.HandlerFunc {
	return func(c *gin.Context) {
		positions, err := s.b.GetDepotPositions(c.GetString("userID"), c.Param("depotID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, positions)
	}
}

func (s *Server) handleGetDepotTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		transactions, err := s.b.GetDepotTransactions(c.GetString("userID"), c.Param("depotID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, transactions)
	}
}

func (s *Server) handleGetInstrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		instruments, err := s.b.GetInstrument(c.GetString("userID"), c.Param("instrumentID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, instruments)
	}
}

func (s *Server) handleGetDocuments() gin.HandlerFunc {
	return func(c *gin.Context) {
		first, _ := strconv.Atoi(c.Query("paging-first"))
		count, _ := strconv.Atoi(c.Query("paging-count"))

		documents, err := s.b.GetDocuments(c.GetString("userID"), first, count)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, documents)
	}
}

func (s *Server) handleGetDocumentBlob() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := s.b.GetDocumentBlob(c.GetString("userID"), c.Param("documentID"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.Data(http.StatusOK, c.GetHeader("Accept"), data)
	}
}
