package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/auth"
	"github.com/selvaalegre/portal/internal/pkg/filestorage"
)

func init() {
	auth.BcryptCost = 4
}

var testLogger = zerolog.Nop()

// ---- users ----

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

// add stores a user directly, hashing password when given.
func (r *fakeUserRepo) add(username string, role models.Role, password string, active bool) *models.User {
	hash := ""
	if password != "" {
		var err error
		if hash, err = auth.HashPassword(password); err != nil {
			panic(err)
		}
	}
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  hash,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Test",
		Unit:      "Casa " + username,
		Role:      role,
		IsActive:  active,
	}
	if err := r.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return apperrors.ErrUsernameAlreadyExists
		}
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ID != user.ID && u.Username == user.Username {
			return apperrors.ErrUsernameAlreadyExists
		}
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) mutate(id int64, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id int64) error {
	return r.mutate(id, func(u *models.User) { now := time.Now(); u.LastLoginAt = &now })
}

func (r *fakeUserRepo) SetActive(_ context.Context, id int64, active bool) error {
	return r.mutate(id, func(u *models.User) { u.IsActive = active })
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.mutate(id, func(u *models.User) { u.Password = hash })
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int64, email string, phone *string) error {
	return r.mutate(id, func(u *models.User) { u.Email, u.Phone = email, phone })
}

func (r *fakeUserRepo) UpdateProfilePhoto(_ context.Context, id int64, ref *string) error {
	return r.mutate(id, func(u *models.User) { u.ProfilePhotoURL = ref })
}

func (r *fakeUserRepo) sorted(keep func(u *models.User) bool) []*models.User {
	out := []*models.User{}
	for _, u := range r.users {
		if keep(u) {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unit != out[j].Unit {
			return out[i].Unit < out[j].Unit
		}
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeUserRepo) List(_ context.Context, f repositories.UserListFilter) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(u *models.User) bool {
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			return false
		}
		if s := strings.ToLower(f.Search); s != "" {
			hay := strings.ToLower(strings.Join([]string{u.Username, u.Email, u.FirstName, u.LastName, u.Unit}, " "))
			return strings.Contains(hay, s)
		}
		return true
	})
	total := int64(len(all))
	start := int(f.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if f.Limit > 0 && start+int(f.Limit) < end {
		end = start + int(f.Limit)
	}
	return all[start:end], total, nil
}

func (r *fakeUserRepo) ListNeighbors(_ context.Context, excludeID int64) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(u *models.User) bool { return u.IsActive && u.ID != excludeID }), nil
}

func (r *fakeUserRepo) CountActiveResidents(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sorted(func(u *models.User) bool {
		return u.IsActive && u.Role == models.RoleResident && !u.IsSuperuser
	})), nil
}

func (r *fakeUserRepo) SuperuserExists(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.IsSuperuser {
			return true, nil
		}
	}
	return false, nil
}

// ---- tokens ----

type fakeToken struct {
	userID    int64
	expiresAt time.Time
	revoked   bool
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*fakeToken{}}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &fakeToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *fakeTokenRepo) ConsumeToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	switch {
	case !ok:
		return 0, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, apperrors.ErrTokenRevoked
	case !t.expiresAt.After(time.Now()):
		return 0, apperrors.ErrTokenExpired
	}
	t.revoked = true
	return t.userID, nil
}

func (r *fakeTokenRepo) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(_ context.Context) (int64, error) {
	return 0, nil
}

func (r *fakeTokenRepo) live(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.userID == userID && !t.revoked {
			n++
		}
	}
	return n
}

// ---- events ----

type fakeEventRepo struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*models.Event
	users  *fakeUserRepo
}

func newFakeEventRepo(users *fakeUserRepo) *fakeEventRepo {
	return &fakeEventRepo{events: map[int64]*models.Event{}, users: users}
}

func (r *fakeEventRepo) withCreator(e *models.Event) *models.Event {
	c := *e
	if u, err := r.users.GetByID(context.Background(), e.UserID); err == nil {
		c.Creator = u
	}
	return &c
}

func (r *fakeEventRepo) Create(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt, e.UpdatedAt = time.Now(), time.Now()
	c := *e
	c.Creator = nil
	r.events[e.ID] = &c
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return r.withCreator(e), nil
}

func (r *fakeEventRepo) Update(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return apperrors.ErrEventNotFound
	}
	e.UpdatedAt = time.Now()
	c := *e
	c.Creator = nil
	r.events[e.ID] = &c
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) visible(viewerID int64, keep func(e *models.Event) bool) []*models.Event {
	out := []*models.Event{}
	for _, e := range r.events {
		full := r.withCreator(e)
		global := full.Creator != nil && (full.Creator.Role == models.RoleAdmin || full.Creator.IsSuperuser)
		if (e.UserID == viewerID || global) && keep(e) {
			out = append(out, full)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeEventRepo) ListVisibleInRange(_ context.Context, viewerID int64, from, to time.Time) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible(viewerID, func(e *models.Event) bool {
		return !e.StartAt.Before(from) && e.StartAt.Before(to)
	}), nil
}

func (r *fakeEventRepo) ListUpcomingVisible(_ context.Context, viewerID int64, from time.Time, limit uint64) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.visible(viewerID, func(e *models.Event) bool { return !e.StartAt.Before(from) })
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- requests ----

type fakeRequestRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]*models.Request
	users    *fakeUserRepo
}

func newFakeRequestRepo(users *fakeUserRepo) *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[int64]*models.Request{}, users: users}
}

func (r *fakeRequestRepo) full(req *models.Request) *models.Request {
	c := *req
	if u, err := r.users.GetByID(context.Background(), req.UserID); err == nil {
		c.Submitter = u
	}
	return &c
}

func (r *fakeRequestRepo) Create(_ context.Context, req *models.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	// Distinct creation instants keep newest-first ordering deterministic.
	req.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(req.ID) * time.Minute)
	req.UpdatedAt = req.CreatedAt
	c := *req
	c.Submitter = nil
	r.requests[req.ID] = &c
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id int64) (*models.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	return r.full(req), nil
}

func (r *fakeRequestRepo) Resolve(_ context.Context, id int64, status models.RequestStatus, response *string) (*models.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	req.Status, req.AdminResponse = status, response
	req.UpdatedAt = time.Now()
	c := *req
	return &c, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return apperrors.ErrRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeRequestRepo) List(_ context.Context, userID *int64, status models.RequestStatus) ([]*models.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Request{}
	for _, req := range r.requests {
		if userID != nil && req.UserID != *userID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, r.full(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRequestRepo) CountByStatus(ctx context.Context, userID *int64, status models.RequestStatus) (int, error) {
	list, err := r.List(ctx, userID, status)
	return len(list), err
}

// ---- pets ----

type fakePetRepo struct {
	mu     sync.Mutex
	nextID int64
	pets   map[int64]*models.Pet
}

func newFakePetRepo() *fakePetRepo {
	return &fakePetRepo{pets: map[int64]*models.Pet{}}
}

func (r *fakePetRepo) Create(_ context.Context, p *models.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.RegisteredAt = time.Now()
	c := *p
	r.pets[p.ID] = &c
	return nil
}

func (r *fakePetRepo) GetByID(_ context.Context, id int64) (*models.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return nil, apperrors.ErrPetNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakePetRepo) Update(_ context.Context, p *models.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[p.ID]; !ok {
		return apperrors.ErrPetNotFound
	}
	c := *p
	r.pets[p.ID] = &c
	return nil
}

func (r *fakePetRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok {
		return apperrors.ErrPetNotFound
	}
	delete(r.pets, id)
	return nil
}

func (r *fakePetRepo) List(_ context.Context, unit string, species models.Species) ([]*models.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Pet{}
	for _, p := range r.pets {
		if !p.IsActive || (unit != "" && p.Unit != unit) || (species != "" && p.Species != species) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unit != out[j].Unit {
			return out[i].Unit < out[j].Unit
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ---- vehicles ----

type fakeVehicleRepo struct {
	mu       sync.Mutex
	nextID   int64
	vehicles map[int64]*models.Vehicle
	// skipPrecheck makes PlateExists lie, to exercise the constraint path.
	skipPrecheck bool
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: map[int64]*models.Vehicle{}}
}

func (r *fakeVehicleRepo) plateTaken(plate string, excludeID int64) bool {
	for _, v := range r.vehicles {
		if v.Plate == plate && v.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *fakeVehicleRepo) Create(_ context.Context, v *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.plateTaken(v.Plate, 0) {
		return apperrors.ErrPlateAlreadyExists
	}
	r.nextID++
	v.ID = r.nextID
	v.RegisteredAt = time.Now()
	c := *v
	r.vehicles[v.ID] = &c
	return nil
}

func (r *fakeVehicleRepo) GetByID(_ context.Context, id int64) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, apperrors.ErrVehicleNotFound
	}
	c := *v
	return &c, nil
}

func (r *fakeVehicleRepo) PlateExists(_ context.Context, plate string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skipPrecheck {
		return false, nil
	}
	return r.plateTaken(plate, excludeID), nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, v *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[v.ID]; !ok {
		return apperrors.ErrVehicleNotFound
	}
	if r.plateTaken(v.Plate, v.ID) {
		return apperrors.ErrPlateAlreadyExists
	}
	c := *v
	r.vehicles[v.ID] = &c
	return nil
}

func (r *fakeVehicleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return apperrors.ErrVehicleNotFound
	}
	delete(r.vehicles, id)
	return nil
}

func (r *fakeVehicleRepo) List(_ context.Context, unit string) ([]*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Vehicle{}
	for _, v := range r.vehicles {
		if unit == "" || v.Unit == unit {
			c := *v
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unit != out[j].Unit {
			return out[i].Unit < out[j].Unit
		}
		return out[i].Plate < out[j].Plate
	})
	return out, nil
}

func (r *fakeVehicleRepo) countPlate(plate string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.vehicles {
		if v.Plate == plate {
			n++
		}
	}
	return n
}

// ---- publications ----

type fakePublicationRepo struct {
	mu     sync.Mutex
	nextID int64
	pubs   map[int64]*models.Publication
}

func newFakePublicationRepo() *fakePublicationRepo {
	return &fakePublicationRepo{pubs: map[int64]*models.Publication{}}
}

func (r *fakePublicationRepo) Create(_ context.Context, p *models.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.PublishedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(p.ID) * time.Hour)
	p.UpdatedAt = p.PublishedAt
	c := *p
	c.Author = nil
	r.pubs[p.ID] = &c
	return nil
}

func (r *fakePublicationRepo) GetByID(_ context.Context, id int64) (*models.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pubs[id]
	if !ok {
		return nil, apperrors.ErrPublicationNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakePublicationRepo) Update(_ context.Context, p *models.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pubs[p.ID]; !ok {
		return apperrors.ErrPublicationNotFound
	}
	c := *p
	c.Author = nil
	r.pubs[p.ID] = &c
	return nil
}

func (r *fakePublicationRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pubs[id]; !ok {
		return apperrors.ErrPublicationNotFound
	}
	delete(r.pubs, id)
	return nil
}

func (r *fakePublicationRepo) List(_ context.Context, t models.PublicationType, offset, limit uint64) ([]*models.Publication, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []*models.Publication{}
	for _, p := range r.pubs {
		if t == "" || p.Type == t {
			c := *p
			all = append(all, &c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PublishedAt.After(all[j].PublishedAt) })
	total := int64(len(all))
	start := int(offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+int(limit) < end {
		end = start + int(limit)
	}
	return all[start:end], total, nil
}

// ---- messages ----

type fakeMessageRepo struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*models.Message
	users  *fakeUserRepo
	clock  time.Time
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{users: users, clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	if _, err := r.users.GetByID(context.Background(), m.RecipientID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	m.ID, m.SentAt, m.IsRead = r.nextID, r.clock, false
	c := *m
	r.msgs = append(r.msgs, &c)
	return nil
}

// markRead flips matching unread messages under the lock, like the conditional UPDATE.
func (r *fakeMessageRepo) markRead(recipientID, senderID int64) []*models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	out := []*models.Message{}
	for _, m := range r.msgs {
		if m.SenderID == senderID && m.RecipientID == recipientID && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
			c := *m
			out = append(out, &c)
		}
	}
	return out
}

func (r *fakeMessageRepo) MarkConversationRead(_ context.Context, recipientID, senderID int64) ([]int64, error) {
	ids := []int64{}
	for _, m := range r.markRead(recipientID, senderID) {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (r *fakeMessageRepo) ClaimUnread(_ context.Context, recipientID, senderID int64) ([]*models.Message, error) {
	return r.markRead(recipientID, senderID), nil
}

func (r *fakeMessageRepo) Conversation(_ context.Context, a, b int64) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Message{}
	for _, m := range r.msgs {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) unreadFrom(senderID, recipientID int64) int {
	n := 0
	for _, m := range r.msgs {
		if m.SenderID == senderID && m.RecipientID == recipientID && !m.IsRead {
			n++
		}
	}
	return n
}

func (r *fakeMessageRepo) UnreadCountsFromResidents(ctx context.Context, adminID int64) ([]*models.PeerUnread, error) {
	residents, _, _ := r.users.List(ctx, repositories.UserListFilter{Role: models.RoleResident})
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.PeerUnread{}
	for _, u := range residents {
		if !u.IsActive || u.IsSuperuser || u.ID == adminID {
			continue
		}
		out = append(out, &models.PeerUnread{User: u, UnreadCount: r.unreadFrom(u.ID, adminID)})
	}
	return out, nil
}

func (r *fakeMessageRepo) Peers(ctx context.Context, userID int64) ([]*models.PeerUnread, error) {
	neighbors, _ := r.users.ListNeighbors(ctx, userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.PeerUnread{}
	for _, u := range neighbors {
		out = append(out, &models.PeerUnread{User: u, UnreadCount: r.unreadFrom(u.ID, userID)})
	}
	return out, nil
}

func (r *fakeMessageRepo) UnreadTotal(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.RecipientID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// ---- collaborators ----

type fakeStorage struct {
	mu        sync.Mutex
	n         int
	stored    map[string]filestorage.Kind
	deleted   []string
	reject    bool
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{stored: map[string]filestorage.Kind{}}
}

func (s *fakeStorage) Store(fh *multipart.FileHeader, subdir string, kind filestorage.Kind) (string, error) {
	if fh == nil {
		return "", nil
	}
	if s.reject {
		return "", fmt.Errorf("%w: text/plain", filestorage.ErrUnsupportedType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	ref := fmt.Sprintf("%s/file-%d", subdir, s.n)
	s.stored[ref] = kind
	return ref, nil
}

func (s *fakeStorage) URL(ref string) string { return "/uploads/" + ref }

func (s *fakeStorage) Delete(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.stored, ref)
	s.deleted = append(s.deleted, ref)
	return nil
}

type sentMail struct {
	to, subject string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (n *fakeNotifier) SendWelcomeEmail(toEmail, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to: toEmail, subject: "welcome"})
	return n.fail
}

func (n *fakeNotifier) SendRequestResolvedEmail(toEmail, _, _, status, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to: toEmail, subject: "resolved:" + status})
	return n.fail
}

func upload(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name}
}

func i64(v int64) *int64 { return &v }
