package gateway

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	hertzws "github.com/hertz-contrib/websocket"
	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/pkg/constant"
	"github.com/mbeoliero/coursehub/pkg/errcode"
	"github.com/mbeoliero/coursehub/pkg/idgen"
)

// HertzUpgrader builds the hertz-contrib upgrader sharing this server's origin policy
func (s *WsServer) HertzUpgrader() *hertzws.HertzUpgrader {
	return &hertzws.HertzUpgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(c *app.RequestContext) bool {
			return s.CheckOrigin(string(c.GetHeader("Origin")))
		},
	}
}

// admit authenticates the handshake and loads the conversation rooms to join.
// Any failure rejects the connection before the upgrade.
func (s *WsServer) admit(ctx context.Context, token string) (*entity.User, []string, *errcode.Error) {
	if s.GetOnlineConnCount() >= s.maxConnNum {
		return nil, nil, errcode.ErrConnOverLimit
	}

	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		log.CtxDebug(ctx, "websocket handshake rejected: error=%v", err)
		return nil, nil, errcode.ErrUnauthorized.Wrap(err)
	}

	conversationIds, err := s.convs.ConversationIdsOf(ctx, user.Id)
	if err != nil {
		log.CtxError(ctx, "load conversation rooms failed: user_id=%s, error=%v", user.Id, err)
		return nil, nil, errcode.ErrInternalServer.Wrap(err)
	}

	return user, conversationIds, nil
}

// HandleHertzConnection handles a WebSocket connection on the hertz listener
func (s *WsServer) HandleHertzConnection(ctx context.Context, c *app.RequestContext, upgrader *hertzws.HertzUpgrader) {
	token := c.Query(QueryToken)
	if token == "" {
		token = middleware.AccessToken(c)
	}

	user, conversationIds, e := s.admit(ctx, token)
	if e != nil {
		c.String(e.Status, e.Msg)
		return
	}

	err := upgrader.Upgrade(c, func(conn *hertzws.Conn) {
		wsConn := NewHertzWebSocketClientConn(conn, s.opts)
		client := NewClient(wsConn, user.Id, idgen.NewUUID(), s)

		s.RegisterClient(client, conversationIds)

		// The connection is only valid inside this callback
		client.readLoop()
	})
	if err != nil {
		log.CtxWarn(ctx, "websocket upgrade failed: %v", err)
	}
}

// HandleConnection handles a WebSocket connection on the dedicated net/http listener
func (s *WsServer) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, conversationIds, e := s.admit(ctx, requestToken(r))
	if e != nil {
		http.Error(w, e.Msg, e.Status)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.CtxWarn(ctx, "websocket upgrade failed: %v", err)
		return
	}

	wsConn := NewWebSocketClientConn(conn, s.opts)
	client := NewClient(wsConn, user.Id, idgen.NewUUID(), s)

	s.RegisterClient(client, conversationIds)
	client.Start()
}

// ServeHTTP lets the server be mounted directly on a net/http mux
func (s *WsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.HandleConnection(w, r)
}

// requestToken reads the access token from the query, the cookie, then the Authorization header
func requestToken(r *http.Request) string {
	if token := r.URL.Query().Get(QueryToken); token != "" {
		return token
	}
	if cookie, err := r.Cookie(constant.CookieAccessToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return middleware.BearerToken(r.Header.Get(middleware.AuthorizationHeader))
}
