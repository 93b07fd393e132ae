package gateway

import (
	"context"
	"hash/fnv"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/internal/config"
	"github.com/mbeoliero/coursehub/internal/entity"
	"github.com/mbeoliero/coursehub/internal/middleware"
	"github.com/mbeoliero/coursehub/pkg/constant"
)

// Authenticator verifies the handshake access token
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*entity.User, error)
}

// ConversationDirectory answers membership questions for room joins
type ConversationDirectory interface {
	IsMember(ctx context.Context, conversationId, userId string) (bool, error)
	ConversationIdsOf(ctx context.Context, userId string) ([]string, error)
}

// WsServer is the WebSocket server
type WsServer struct {
	upgrader      *websocket.Upgrader
	cfg           *config.Config
	opts          connOptions
	origins       map[string]struct{}
	auth          Authenticator
	convs         ConversationDirectory
	presence      Presence
	userMap       *UserMap
	rooms         *RoomMap
	eventChan     chan clientEvent
	pushChans     []chan *PushTask
	done          chan struct{}
	onlineConnNum atomic.Int64
	maxConnNum    int64
}

// clientEvent is a registration change, applied in arrival order by the event loop
type clientEvent struct {
	client          *Client
	online          bool
	conversationIds []string
}

// PushTask is one encoded event bound for a room. An empty room means every connection.
type PushTask struct {
	Room  string
	Event string
	Data  []byte
}

// NewWsServer creates a new WebSocket server. A nil presence selects the in-memory one.
func NewWsServer(cfg *config.Config, auth Authenticator, convs ConversationDirectory, presence Presence) *WsServer {
	if presence == nil {
		presence = NewMemoryPresence()
	}

	workerNum := cfg.WebSocket.PushWorkerNum
	if workerNum <= 0 {
		workerNum = 10
	}
	shardSize := cfg.WebSocket.PushChannelSize / workerNum
	if shardSize <= 0 {
		shardSize = 1
	}
	pushChans := make([]chan *PushTask, workerNum)
	for i := range pushChans {
		pushChans[i] = make(chan *PushTask, shardSize)
	}

	origins := make(map[string]struct{}, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		origins[o] = struct{}{}
	}

	s := &WsServer{
		cfg:        cfg,
		opts:       newConnOptions(cfg.WebSocket),
		origins:    origins,
		auth:       auth,
		convs:      convs,
		presence:   presence,
		userMap:    NewUserMap(),
		rooms:      NewRoomMap(),
		eventChan:  make(chan clientEvent, 1000),
		pushChans:  pushChans,
		done:       make(chan struct{}),
		maxConnNum: cfg.WebSocket.MaxConnNum,
	}
	s.upgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.CheckOrigin(r.Header.Get("Origin"))
		},
	}

	return s
}

// Run starts the event loop and one push worker per shard
func (s *WsServer) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		close(s.done)
	}()
	go s.eventLoop(ctx)
	for _, ch := range s.pushChans {
		go s.pushLoop(ctx, ch)
	}
	log.Info("started %d push workers", len(s.pushChans))
}

// eventLoop applies registrations and unregistrations one at a time so
// presence transitions are observed in order
func (s *WsServer) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.eventChan:
			if ev.online {
				s.registerClient(ctx, ev.client, ev.conversationIds)
			} else {
				s.unregisterClient(ctx, ev.client)
			}
		}
	}
}

// pushLoop handles async event pushing for one shard
func (s *WsServer) pushLoop(ctx context.Context, ch chan *PushTask) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-ch:
			s.processPushTask(ctx, task)
		}
	}
}

// processPushTask writes one event to every target connection. A slow
// connection loses the event instead of stalling the worker.
func (s *WsServer) processPushTask(ctx context.Context, task *PushTask) {
	var targets []*Client
	if task.Room == "" {
		targets = s.userMap.AllClients()
	} else {
		targets = s.rooms.Members(task.Room)
	}

	for _, client := range targets {
		if err := client.Push(task.Data); err != nil {
			log.CtxDebug(ctx, "push to client failed: event=%s, user_id=%s, conn_id=%s, error=%v",
				task.Event, client.UserId, client.ConnId, err)
		}
	}
}

// registerClient registers a client and joins its rooms
func (s *WsServer) registerClient(ctx context.Context, client *Client, conversationIds []string) {
	if client.IsClosed() {
		return
	}

	s.userMap.Register(client)
	s.rooms.Join(constant.UserRoom(client.UserId), client)
	for _, id := range conversationIds {
		s.rooms.Join(constant.ConversationRoom(id), client)
	}
	s.onlineConnNum.Add(1)

	first, err := s.presence.Add(ctx, client.UserId, client.ConnId)
	if err != nil {
		log.CtxWarn(ctx, "presence add failed: user_id=%s, error=%v", client.UserId, err)
	}

	log.CtxInfo(ctx, "client registered: user_id=%s, conn_id=%s, rooms=%d, first=%v, online_conns=%d",
		client.UserId, client.ConnId, len(conversationIds)+1, first, s.onlineConnNum.Load())

	if first {
		s.broadcastOnlineUsers(ctx)
	}
}

// unregisterClient unregisters a client and leaves all its rooms
func (s *WsServer) unregisterClient(ctx context.Context, client *Client) {
	s.rooms.LeaveAll(client)
	if !s.userMap.Unregister(client) {
		return
	}
	s.onlineConnNum.Add(-1)

	last, err := s.presence.Remove(ctx, client.UserId, client.ConnId)
	if err != nil {
		log.CtxWarn(ctx, "presence remove failed: user_id=%s, error=%v", client.UserId, err)
	}

	log.CtxInfo(ctx, "client unregistered: user_id=%s, conn_id=%s, last=%v, online_conns=%d",
		client.UserId, client.ConnId, last, s.onlineConnNum.Load())

	if last {
		s.broadcastOnlineUsers(ctx)
	}
}

func (s *WsServer) broadcastOnlineUsers(ctx context.Context) {
	ids, err := s.presence.OnlineUsers(ctx)
	if err != nil {
		log.CtxWarn(ctx, "list online users failed: %v", err)
		return
	}
	s.Broadcast(constant.EventOnlineUsers, OnlineUsersPayload{UserIds: ids})
}

// RegisterClient queues client for registration with its conversation rooms
func (s *WsServer) RegisterClient(client *Client, conversationIds []string) {
	s.submit(clientEvent{client: client, online: true, conversationIds: conversationIds})
}

// UnregisterClient queues client for unregistration
func (s *WsServer) UnregisterClient(client *Client) {
	s.submit(clientEvent{client: client})
}

func (s *WsServer) submit(ev clientEvent) {
	select {
	case s.eventChan <- ev:
	case <-s.done:
	}
}

// Emit queues event for every connection joined to room
func (s *WsServer) Emit(room, event string, payload interface{}) {
	s.enqueue(room, event, payload)
}

// Broadcast queues event for every local connection
func (s *WsServer) Broadcast(event string, payload interface{}) {
	s.enqueue("", event, payload)
}

// JoinUser joins every live connection of userId to room
func (s *WsServer) JoinUser(userId, room string) {
	clients, ok := s.userMap.GetAll(userId)
	if !ok {
		return
	}
	for _, client := range clients {
		s.rooms.Join(room, client)
	}
}

// enqueue encodes the frame once and hands it to the room's shard, so
// events for one room are delivered in emit order
func (s *WsServer) enqueue(room, event string, payload interface{}) {
	data, err := encodeFrame(event, payload)
	if err != nil {
		log.Warn("encode event failed: event=%s, error=%v", event, err)
		return
	}

	task := &PushTask{Room: room, Event: event, Data: data}
	select {
	case s.shard(room) <- task:
	default:
		log.Warn("push channel full, event dropped: room=%s, event=%s", room, event)
	}
}

func (s *WsServer) shard(room string) chan *PushTask {
	h := fnv.New32a()
	h.Write([]byte(room))
	return s.pushChans[h.Sum32()%uint32(len(s.pushChans))]
}

// CheckOrigin validates the Origin header; requests without one are not from a browser
func (s *WsServer) CheckOrigin(origin string) bool {
	return origin == "" || middleware.OriginAllowed(s.origins, origin)
}

// GetOnlineConnCount returns online connection count
func (s *WsServer) GetOnlineConnCount() int64 {
	return s.onlineConnNum.Load()
}

// ========== Client Event Handlers ==========

// HandleJoinConversation joins the conversation room after checking membership
func (s *WsServer) HandleJoinConversation(ctx context.Context, client *Client, req *RoomRequest) error {
	if req.Id == "" {
		return ErrInvalidProtocol
	}
	ok, err := s.convs.IsMember(ctx, req.Id, client.UserId)
	if err != nil {
		log.CtxWarn(ctx, "membership check failed: conversation_id=%s, user_id=%s, error=%v", req.Id, client.UserId, err)
		return ErrNotMember
	}
	if !ok {
		return ErrNotMember
	}
	s.rooms.Join(constant.ConversationRoom(req.Id), client)
	return nil
}

// HandleLeaveConversation leaves the conversation room
func (s *WsServer) HandleLeaveConversation(ctx context.Context, client *Client, req *RoomRequest) error {
	if req.Id == "" {
		return ErrInvalidProtocol
	}
	s.rooms.Leave(constant.ConversationRoom(req.Id), client)
	return nil
}

// HandleJoinUserRoom joins the caller's own user room
func (s *WsServer) HandleJoinUserRoom(ctx context.Context, client *Client, req *RoomRequest) error {
	if req.Id != "" && req.Id != client.UserId {
		return ErrForeignUserRoom
	}
	s.rooms.Join(constant.UserRoom(client.UserId), client)
	return nil
}

// HandleLeaveUserRoom leaves the caller's own user room
func (s *WsServer) HandleLeaveUserRoom(ctx context.Context, client *Client, req *RoomRequest) error {
	if req.Id != "" && req.Id != client.UserId {
		return ErrForeignUserRoom
	}
	s.rooms.Leave(constant.UserRoom(client.UserId), client)
	return nil
}
