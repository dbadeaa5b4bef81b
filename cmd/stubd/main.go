// Package main provides stubd, a local stub backend implementing just
// enough of the Ripple REST and websocket surface to develop the client
// against without a real deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"ripple/internal/models"
)

type stubUser struct {
	models.User
	PasswordHash []byte
}

// seedFixture is the optional yaml file shape for deterministic seeding.
type seedFixture struct {
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"users"`
	Posts []struct {
		Author  string `yaml:"author"`
		Content string `yaml:"content"`
	} `yaml:"posts"`
}

// state is the in-memory backing store for the stub.
type state struct {
	mu       sync.RWMutex
	users    map[uint]*stubUser
	byEmail  map[string]uint
	posts    []*models.Post
	comments map[uint][]models.Comment
	chats    map[uint][]models.ChatMessage
	nextID   uint

	// rooms maps "post:<id>" / "chat:<id>" to the joined connections.
	rooms map[string]map[*websocket.Conn]bool
	conns map[*websocket.Conn]uint // conn -> userID
}

func newState() *state {
	return &state{
		users:    make(map[uint]*stubUser),
		byEmail:  make(map[string]uint),
		comments: make(map[uint][]models.Comment),
		chats:    make(map[uint][]models.ChatMessage),
		rooms:    make(map[string]map[*websocket.Conn]bool),
		conns:    make(map[*websocket.Conn]uint),
		nextID:   1,
	}
}

func (st *state) addUser(username, email, password string) *stubUser {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	st.mu.Lock()
	defer st.mu.Unlock()
	u := &stubUser{
		User: models.User{
			ID:        st.nextID,
			Username:  username,
			Email:     email,
			Bio:       gofakeit.Quote(),
			Avatar:    gofakeit.ImageURL(128, 128),
			CreatedAt: time.Now(),
		},
		PasswordHash: hash,
	}
	st.nextID++
	st.users[u.ID] = u
	st.byEmail[email] = u.ID
	return u
}

func (st *state) addPost(author *stubUser, content string) *models.Post {
	st.mu.Lock()
	defer st.mu.Unlock()
	p := &models.Post{
		ID:        st.nextID,
		Content:   content,
		UserID:    author.ID,
		User:      author.User,
		CreatedAt: time.Now(),
	}
	st.nextID++
	st.posts = append([]*models.Post{p}, st.posts...)
	return p
}

func (st *state) seed(fixturePath string, users, posts int) {
	if fixturePath != "" {
		data, err := os.ReadFile(fixturePath)
		if err != nil {
			log.Fatalf("failed to read seed fixture: %v", err)
		}
		var fixture seedFixture
		if err := yaml.Unmarshal(data, &fixture); err != nil {
			log.Fatalf("failed to parse seed fixture: %v", err)
		}
		byName := make(map[string]*stubUser)
		for _, u := range fixture.Users {
			byName[u.Username] = st.addUser(u.Username, u.Email, u.Password)
		}
		for _, p := range fixture.Posts {
			author, ok := byName[p.Author]
			if !ok {
				log.Fatalf("seed post references unknown author %q", p.Author)
			}
			st.addPost(author, p.Content)
		}
		return
	}

	admin := st.addUser("admin", "admin@example.com", "password123")
	seeded := []*stubUser{admin}
	for i := 1; i < users; i++ {
		seeded = append(seeded, st.addUser(gofakeit.Username(), gofakeit.Email(), "password123"))
	}
	for i := 0; i < posts; i++ {
		st.addPost(seeded[i%len(seeded)], gofakeit.HipsterSentence(12))
	}
}

type server struct {
	st     *state
	secret []byte
}

func (s *server) issueToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *server) userFromToken(tokenString string) (*stubUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	id64, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject")
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	user, ok := s.st.users[uint(id64)]
	if !ok {
		return nil, fmt.Errorf("unknown user")
	}
	return user, nil
}

// authRequired extracts the bearer token and stores the user in locals.
func (s *server) authRequired(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if len(header) < 8 || header[:7] != "Bearer " {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header required"})
	}
	user, err := s.userFromToken(header[7:])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	c.Locals("user", user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *stubUser {
	return c.Locals("user").(*stubUser)
}

func (s *server) login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	s.st.mu.RLock()
	id, ok := s.st.byEmail[req.Email]
	var user *stubUser
	if ok {
		user = s.st.users[id]
	}
	s.st.mu.RUnlock()
	if user == nil || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
	}
	return c.JSON(fiber.Map{"token": token, "user": user.User})
}

func (s *server) profile(c *fiber.Ctx) error {
	return c.JSON(currentUser(c).User)
}

func (s *server) updateProfile(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	user := currentUser(c)
	s.st.mu.Lock()
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	s.st.mu.Unlock()
	return c.JSON(user.User)
}

const feedPageSize = 10

func (s *server) listPosts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	user := currentUser(c)

	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	start := (page - 1) * feedPageSize
	end := start + feedPageSize
	if start > len(s.st.posts) {
		start = len(s.st.posts)
	}
	if end > len(s.st.posts) {
		end = len(s.st.posts)
	}

	posts := make([]models.Post, 0, end-start)
	for _, p := range s.st.posts[start:end] {
		out := *p
		out.Liked = false
		for _, id := range out.LikedBy {
			if id == user.ID {
				out.Liked = true
			}
		}
		posts = append(posts, out)
	}

	return c.JSON(models.FeedPage{
		Posts:   posts,
		Page:    page,
		HasMore: end < len(s.st.posts),
		Cursor:  strconv.Itoa(page + 1),
	})
}

func (s *server) createPost(c *fiber.Ctx) error {
	var req struct {
		Content   string   `json:"content"`
		ImageURLs []string `json:"image_urls"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Content == "" && len(req.ImageURLs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Content is required"})
	}
	post := s.st.addPost(currentUser(c), req.Content)
	s.st.mu.Lock()
	post.ImageURLs = req.ImageURLs
	s.st.mu.Unlock()
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (s *server) setLike(liked bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
		}
		user := currentUser(c)

		s.st.mu.Lock()
		defer s.st.mu.Unlock()
		for _, p := range s.st.posts {
			if p.ID != uint(postID) {
				continue
			}
			idx := -1
			for i, id := range p.LikedBy {
				if id == user.ID {
					idx = i
				}
			}
			if liked && idx < 0 {
				p.LikedBy = append(p.LikedBy, user.ID)
			} else if !liked && idx >= 0 {
				p.LikedBy = append(p.LikedBy[:idx], p.LikedBy[idx+1:]...)
			}
			p.LikesCount = len(p.LikedBy)
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}
}

func (s *server) listComments(c *fiber.Ctx) error {
	postID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	comments := s.st.comments[uint(postID)]
	if comments == nil {
		comments = []models.Comment{}
	}
	return c.JSON(comments)
}

func (s *server) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}
	// The stub does not persist uploads; it fabricates a stable URL.
	return c.JSON(fiber.Map{"url": fmt.Sprintf("https://cdn.ripple.local/%s-%s", uuid.NewString(), file.Filename)})
}

// websocketHandler speaks the client's envelope protocol: join/leave room
// events adjust membership, send_comment/send_message are broadcast back
// to the joined room as new_comment/new_message (sender included).
func (s *server) websocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userVal := conn.Locals("user")
		if userVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		user := userVal.(*stubUser)

		s.st.mu.Lock()
		s.st.conns[conn] = user.ID
		s.st.mu.Unlock()

		defer func() {
			s.st.mu.Lock()
			delete(s.st.conns, conn)
			for _, members := range s.st.rooms {
				delete(members, conn)
			}
			s.st.mu.Unlock()
			_ = conn.Close()
		}()

		for {
			var env struct {
				Type    string          `json:"type"`
				Payload json.RawMessage `json:"payload"`
			}
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			switch env.Type {
			case "join_post", "join_chat":
				s.joinRoom(conn, env.Type, env.Payload)
			case "leave_post", "leave_chat":
				s.leaveRoom(conn, env.Type, env.Payload)
			case "send_comment":
				s.handleSendComment(user, env.Payload)
			case "send_message":
				s.handleSendMessage(user, env.Payload)
			default:
				log.Printf("stubd: unknown event %q from user %d", env.Type, user.ID)
			}
		}
	})
}

func roomName(eventType string, payload json.RawMessage) (string, bool) {
	var p struct {
		RoomID uint `json:"room_id"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", false
	}
	kind := "post"
	if eventType == "join_chat" || eventType == "leave_chat" {
		kind = "chat"
	}
	return fmt.Sprintf("%s:%d", kind, p.RoomID), true
}

func (s *server) joinRoom(conn *websocket.Conn, eventType string, payload json.RawMessage) {
	room, ok := roomName(eventType, payload)
	if !ok {
		return
	}
	s.st.mu.Lock()
	if s.st.rooms[room] == nil {
		s.st.rooms[room] = make(map[*websocket.Conn]bool)
	}
	s.st.rooms[room][conn] = true
	s.st.mu.Unlock()
}

func (s *server) leaveRoom(conn *websocket.Conn, eventType string, payload json.RawMessage) {
	room, ok := roomName(eventType, payload)
	if !ok {
		return
	}
	s.st.mu.Lock()
	delete(s.st.rooms[room], conn)
	s.st.mu.Unlock()
}

func (s *server) broadcast(room, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	env, _ := json.Marshal(map[string]json.RawMessage{
		"type":    json.RawMessage(strconv.Quote(eventType)),
		"payload": data,
	})

	s.st.mu.RLock()
	members := make([]*websocket.Conn, 0, len(s.st.rooms[room]))
	for conn := range s.st.rooms[room] {
		members = append(members, conn)
	}
	s.st.mu.RUnlock()

	for _, conn := range members {
		if err := conn.WriteMessage(websocket.TextMessage, env); err != nil {
			log.Printf("stubd: broadcast to room %s failed: %v", room, err)
		}
	}
}

func (s *server) handleSendComment(user *stubUser, payload json.RawMessage) {
	var p struct {
		PostID   uint   `json:"post_id"`
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
		VideoURL string `json:"video_url"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		PostID:    p.PostID,
		UserID:    user.ID,
		User:      user.User,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		VideoURL:  p.VideoURL,
		CreatedAt: time.Now(),
	}
	s.st.mu.Lock()
	s.st.comments[p.PostID] = append(s.st.comments[p.PostID], comment)
	s.st.mu.Unlock()

	s.broadcast(fmt.Sprintf("post:%d", p.PostID), "new_comment", comment)
}

func (s *server) handleSendMessage(user *stubUser, payload json.RawMessage) {
	var p struct {
		ChatID   uint   `json:"chat_id"`
		Text     string `json:"text"`
		ImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	message := models.ChatMessage{
		ID:        uuid.NewString(),
		ChatID:    p.ChatID,
		SenderID:  user.ID,
		Sender:    user.User,
		Text:      p.Text,
		ImageURL:  p.ImageURL,
		Timestamp: time.Now(),
	}
	s.st.mu.Lock()
	s.st.chats[p.ChatID] = append(s.st.chats[p.ChatID], message)
	s.st.mu.Unlock()

	s.broadcast(fmt.Sprintf("chat:%d", p.ChatID), "new_message", message)
}

func main() {
	port := flag.String("port", "8375", "Listen port")
	secret := flag.String("secret", "stub-secret-not-for-production", "JWT signing secret")
	users := flag.Int("users", 8, "Seeded user count")
	posts := flag.Int("posts", 40, "Seeded post count")
	fixture := flag.String("fixture", "", "Optional yaml seed fixture path")
	seed := flag.Int64("seed", 0, "Deterministic fakeit seed (0 = random)")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	st := newState()
	st.seed(*fixture, *users, *posts)

	srv := &server{st: st, secret: []byte(*secret)}

	app := fiber.New(fiber.Config{DisableStartupMessage: false})
	app.Use(recover.New())
	app.Use(requestid.New())

	prom := fiberprometheus.New("ripple-stubd")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Post("/auth/login", srv.login)

	authed := app.Group("", srv.authRequired)
	authed.Get("/auth/profile", srv.profile)
	authed.Put("/users/me", srv.updateProfile)
	authed.Get("/posts", srv.listPosts)
	authed.Post("/posts", srv.createPost)
	authed.Post("/posts/:id/like", srv.setLike(true))
	authed.Delete("/posts/:id/like", srv.setLike(false))
	authed.Get("/posts/:id/comments", srv.listComments)
	authed.Post("/upload", srv.upload)

	authed.Get("/chats", func(c *fiber.Ctx) error {
		return c.JSON([]models.ChatRoom{{ID: 1, Name: "general"}})
	})
	authed.Get("/chats/:id/messages", func(c *fiber.Ctx) error {
		chatID, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid chat id"})
		}
		st.mu.RLock()
		defer st.mu.RUnlock()
		messages := st.chats[uint(chatID)]
		if messages == nil {
			messages = []models.ChatMessage{}
		}
		return c.JSON(messages)
	})
	authed.Get("/community", func(c *fiber.Ctx) error {
		return c.JSON([]fiber.Map{{"id": 1, "name": "ripple-dev", "member_count": len(st.users), "joined": true}})
	})
	authed.Post("/community/:id/join", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Use("/ws", srv.authRequired, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", srv.websocketHandler())

	log.Printf("stubd listening on :%s (%d users, %d posts)", *port, len(st.users), len(st.posts))
	log.Fatal(app.Listen(":" + *port))
}
