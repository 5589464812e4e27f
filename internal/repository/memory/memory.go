// Package memory is an in-process implementation of the repository
// interfaces. Services and handlers are tested against it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
)

type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]model.User
	profiles      map[uuid.UUID]model.Profile
	medicines     []model.Medicine
	userMedicines map[uuid.UUID]model.UserMedicine
	doses         map[uuid.UUID]model.Dose
	relationships map[uuid.UUID]model.Relationship
	healthMetrics map[uuid.UUID]model.HealthMetric
	files         map[uuid.UUID]model.File
	medicineChats map[[2]uuid.UUID]model.ChatConversation
	generalChats  map[uuid.UUID]model.ChatConversation
	outbox        []model.OutboxEvent
}

func NewStore() *Store {
	return &Store{
		users:         map[uuid.UUID]model.User{},
		profiles:      map[uuid.UUID]model.Profile{},
		userMedicines: map[uuid.UUID]model.UserMedicine{},
		doses:         map[uuid.UUID]model.Dose{},
		relationships: map[uuid.UUID]model.Relationship{},
		healthMetrics: map[uuid.UUID]model.HealthMetric{},
		files:         map[uuid.UUID]model.File{},
		medicineChats: map[[2]uuid.UUID]model.ChatConversation{},
		generalChats:  map[uuid.UUID]model.ChatConversation{},
	}
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository           { return profileRepo{s} }
func (s *Store) Medicines() repository.MedicineRepository         { return medicineRepo{s} }
func (s *Store) UserMedicines() repository.UserMedicineRepository { return userMedicineRepo{s} }
func (s *Store) Doses() repository.DoseRepository                 { return doseRepo{s} }
func (s *Store) Relationships() repository.RelationshipRepository { return relationshipRepo{s} }
func (s *Store) HealthMetrics() repository.HealthMetricRepository { return healthMetricRepo{s} }
func (s *Store) Files() repository.FileRepository                 { return fileRepo{s} }
func (s *Store) ChatHistories() repository.ChatHistoryRepository  { return chatRepo{s} }
func (s *Store) Outbox() *OutboxRepo                              { return &OutboxRepo{s} }

// MedicineCount reports the catalogue size.
func (s *Store) MedicineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.medicines)
}

// DoseCount reports how many doses reference userMedicineID.
func (s *Store) DoseCount(userMedicineID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, d := range s.doses {
		if d.UserMedicineID == userMedicineID {
			n++
		}
	}
	return n
}

// AddUser seeds an account and its profile.
func (s *Store) AddUser(email, name string) uuid.UUID {
	u := &model.User{Email: email, Name: name, PasswordHash: "x"}
	_ = userRepo{s}.CreateWithProfile(context.Background(), u)
	return u.ID
}

type userRepo struct{ s *Store }

func (r userRepo) CreateWithProfile(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return errors.Conflict("User already exists", nil)
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now().UTC()
	r.s.users[u.ID] = *u
	name := u.Name
	r.s.profiles[u.ID] = model.Profile{
		ID: u.ID, Name: &name, Phone: u.Phone, Gender: u.Gender,
		DateOfBirth: u.DateOfBirth, UpdatedAt: &u.CreatedAt,
	}
	return nil
}

func (r userRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

type profileRepo struct{ s *Store }

func (r profileRepo) Get(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	return &p, nil
}

func (r profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	u, err := userRepo(r).GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NotFound("Profile", nil)
	}
	return r.Get(ctx, u.ID)
}

func (r profileRepo) List(_ context.Context, page model.Pagination) ([]*model.Profile, error) {
	page.Normalize()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*model.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		p := p
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	if page.Skip >= len(all) {
		return []*model.Profile{}, nil
	}
	end := min(page.Skip+page.Limit, len(all))
	return all[page.Skip:end], nil
}

func (r profileRepo) Update(_ context.Context, p *model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; !ok {
		return errors.NotFound("Profile", nil)
	}
	if p.Phone != nil {
		for id, other := range r.s.profiles {
			if id != p.ID && other.Phone != nil && *other.Phone == *p.Phone {
				return errors.Conflict("Profile already exists", nil)
			}
		}
	}
	now := time.Now().UTC()
	p.UpdatedAt = &now
	r.s.profiles[p.ID] = *p
	return nil
}

type medicineRepo struct{ s *Store }

func (r medicineRepo) Create(_ context.Context, m *model.Medicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	r.s.medicines = append(r.s.medicines, *m)
	return nil
}

func (r medicineRepo) Get(_ context.Context, id uuid.UUID) (*model.Medicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.medicines {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, errors.NotFound("Medicine", nil)
}

func (r medicineRepo) FindByName(_ context.Context, name string) (*model.Medicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.medicines {
		if strings.EqualFold(m.Name, name) {
			return &m, nil
		}
	}
	return nil, errors.NotFound("Medicine", nil)
}

type userMedicineRepo struct{ s *Store }

func (r userMedicineRepo) withMedicine(um model.UserMedicine) *model.UserMedicine {
	for _, m := range r.s.medicines {
		if m.ID == um.MedicineID {
			m := m
			um.Medicine = &m
		}
	}
	return &um
}

func (r userMedicineRepo) Create(_ context.Context, um *model.UserMedicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	um.ID = uuid.New()
	um.CreatedAt = time.Now().UTC()
	stored := *um
	stored.Medicine = nil
	r.s.userMedicines[um.ID] = stored
	return nil
}

func (r userMedicineRepo) Get(_ context.Context, id uuid.UUID) (*model.UserMedicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	um, ok := r.s.userMedicines[id]
	if !ok {
		return nil, errors.NotFound("Medicine", nil)
	}
	return r.withMedicine(um), nil
}

func (r userMedicineRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.UserMedicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*model.UserMedicine{}
	for _, um := range r.s.userMedicines {
		if um.UserID == userID {
			list = append(list, r.withMedicine(um))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r userMedicineRepo) Update(_ context.Context, um *model.UserMedicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.userMedicines[um.ID]; !ok {
		return errors.NotFound("Medicine", nil)
	}
	stored := *um
	stored.Medicine = nil
	r.s.userMedicines[um.ID] = stored
	return nil
}

func (r userMedicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.userMedicines[id]; !ok {
		return errors.NotFound("Medicine", nil)
	}
	for doseID, d := range r.s.doses {
		if d.UserMedicineID == id {
			delete(r.s.doses, doseID)
		}
	}
	delete(r.s.userMedicines, id)
	return nil
}

type doseRepo struct{ s *Store }

func (r doseRepo) Create(_ context.Context, d *model.Dose) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	if d.Quantity == "" {
		d.Quantity = model.DefaultDoseQuantity
	}
	r.s.doses[d.ID] = *d
	return nil
}

func (r doseRepo) Get(_ context.Context, id uuid.UUID) (*model.Dose, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.doses[id]
	if !ok {
		return nil, errors.NotFound("Dose", nil)
	}
	return &d, nil
}

func (r doseRepo) ListByUserMedicine(_ context.Context, userMedicineID uuid.UUID) ([]*model.Dose, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*model.Dose{}
	for _, d := range r.s.doses {
		if d.UserMedicineID == userMedicineID {
			d := d
			list = append(list, &d)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DoseTime.String() < list[j].DoseTime.String() })
	return list, nil
}

func (r doseRepo) Update(_ context.Context, d *model.Dose) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doses[d.ID]; !ok {
		return errors.NotFound("Dose", nil)
	}
	r.s.doses[d.ID] = *d
	return nil
}

func (r doseRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doses[id]; !ok {
		return errors.NotFound("Dose", nil)
	}
	delete(r.s.doses, id)
	return nil
}

type relationshipRepo struct{ s *Store }

func (r relationshipRepo) Create(_ context.Context, rel *model.Relationship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.relationships {
		if existing.UserID == rel.UserID && existing.RelatedUserID == rel.RelatedUserID {
			return errors.Conflict("Relationship already exists", nil)
		}
	}
	rel.ID = uuid.New()
	rel.CreatedAt = time.Now().UTC()
	stored := *rel
	stored.RelatedUser = nil
	r.s.relationships[rel.ID] = stored
	return nil
}

func (r relationshipRepo) Get(_ context.Context, id uuid.UUID) (*model.Relationship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rel, ok := r.s.relationships[id]
	if !ok {
		return nil, errors.NotFound("Relationship", nil)
	}
	return &rel, nil
}

func (r relationshipRepo) FindEdge(_ context.Context, userID, relatedUserID uuid.UUID) (*model.Relationship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rel := range r.s.relationships {
		if rel.UserID == userID && rel.RelatedUserID == relatedUserID {
			return &rel, nil
		}
	}
	return nil, errors.NotFound("Relationship", nil)
}

func (r relationshipRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Relationship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*model.Relationship{}
	for _, rel := range r.s.relationships {
		if rel.UserID == userID {
			rel := rel
			if p, ok := r.s.profiles[rel.RelatedUserID]; ok {
				rel.RelatedUser = &p
			}
			list = append(list, &rel)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r relationshipRepo) Update(_ context.Context, rel *model.Relationship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.relationships[rel.ID]; !ok {
		return errors.NotFound("Relationship", nil)
	}
	stored := *rel
	stored.RelatedUser = nil
	r.s.relationships[rel.ID] = stored
	return nil
}

func (r relationshipRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.relationships[id]; !ok {
		return errors.NotFound("Relationship", nil)
	}
	delete(r.s.relationships, id)
	return nil
}

type healthMetricRepo struct{ s *Store }

func (r healthMetricRepo) Create(_ context.Context, m *model.HealthMetric) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.New()
	r.s.healthMetrics[m.ID] = *m
	return nil
}

func (r healthMetricRepo) Get(_ context.Context, id uuid.UUID) (*model.HealthMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.healthMetrics[id]
	if !ok {
		return nil, errors.NotFound("Health metric", nil)
	}
	return &m, nil
}

func (r healthMetricRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.HealthMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*model.HealthMetric{}
	for _, m := range r.s.healthMetrics {
		if m.UserID == userID {
			m := m
			list = append(list, &m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Timestamp.After(list[j].Timestamp) })
	return list, nil
}

func (r healthMetricRepo) Update(_ context.Context, m *model.HealthMetric) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.healthMetrics[m.ID]; !ok {
		return errors.NotFound("Health metric", nil)
	}
	r.s.healthMetrics[m.ID] = *m
	return nil
}

func (r healthMetricRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.healthMetrics[id]; !ok {
		return errors.NotFound("Health metric", nil)
	}
	delete(r.s.healthMetrics, id)
	return nil
}

type fileRepo struct{ s *Store }

func (r fileRepo) Create(_ context.Context, f *model.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f.FileHash != nil {
		for _, existing := range r.s.files {
			if existing.FileHash != nil && *existing.FileHash == *f.FileHash {
				return errors.Conflict("File already exists", nil)
			}
		}
	}
	f.ID = uuid.New()
	f.UploadedAt = time.Now().UTC()
	r.s.files[f.ID] = *f
	return nil
}

func (r fileRepo) Get(_ context.Context, id uuid.UUID) (*model.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.files[id]
	if !ok {
		return nil, errors.NotFound("File", nil)
	}
	return &f, nil
}

func (r fileRepo) GetByHash(_ context.Context, hash string) (*model.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, f := range r.s.files {
		if f.FileHash != nil && *f.FileHash == hash {
			return &f, nil
		}
	}
	return nil, errors.NotFound("File", nil)
}

func (r fileRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*model.File{}
	for _, f := range r.s.files {
		if f.UserID == userID {
			f := f
			list = append(list, &f)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UploadedAt.After(list[j].UploadedAt) })
	return list, nil
}

type chatRepo struct{ s *Store }

func (r chatRepo) GetMedicineChat(_ context.Context, userID, medicineID uuid.UUID) (*model.ChatConversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.medicineChats[[2]uuid.UUID{userID, medicineID}]
	if !ok {
		return nil, errors.NotFound("Chat history", nil)
	}
	return &c, nil
}

func (r chatRepo) SaveMedicineChat(_ context.Context, conv *model.ChatConversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{conv.UserID, *conv.MedicineID}
	r.s.medicineChats[key] = stamp(r.s.medicineChats[key], conv)
	return nil
}

func (r chatRepo) GetGeneralChat(_ context.Context, userID uuid.UUID) (*model.ChatConversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.generalChats[userID]
	if !ok {
		return nil, errors.NotFound("Chat history", nil)
	}
	return &c, nil
}

func (r chatRepo) SaveGeneralChat(_ context.Context, conv *model.ChatConversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.generalChats[conv.UserID] = stamp(r.s.generalChats[conv.UserID], conv)
	return nil
}

func stamp(existing model.ChatConversation, conv *model.ChatConversation) model.ChatConversation {
	now := time.Now().UTC()
	if existing.ID == uuid.Nil {
		conv.ID = uuid.New()
		conv.CreatedAt = now
	} else {
		conv.ID = existing.ID
		conv.CreatedAt = existing.CreatedAt
	}
	conv.UpdatedAt = now
	stored := *conv
	stored.History = append(model.ChatHistory(nil), conv.History...)
	return stored
}

// OutboxRepo keeps events in insertion order. Transactions are not modelled.
type OutboxRepo struct{ s *Store }

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

func (r *OutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.New()
	e.Status = model.OutboxStatusPending
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	r.s.outbox = append(r.s.outbox, *e)
	return nil
}

// Events returns a copy of all recorded events.
func (r *OutboxRepo) Events() []model.OutboxEvent {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]model.OutboxEvent(nil), r.s.outbox...)
}

func (r *OutboxRepo) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	return fn(nil)
}

func (r *OutboxRepo) GetPendingEventsWithLock(_ context.Context, _ *sqlx.Tx, limit int) ([]*model.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := time.Now()
	var out []*model.OutboxEvent
	for i := range r.s.outbox {
		e := r.s.outbox[i]
		if (e.Status == model.OutboxStatusPending || e.Status == model.OutboxStatusRetry) &&
			(e.RetryAt == nil || !e.RetryAt.After(now)) {
			out = append(out, &e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OutboxRepo) UpdateStatusTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		e := &r.s.outbox[i]
		if e.ID != id {
			continue
		}
		e.Status = status
		e.ErrorMessage = errorMessage
		e.RetryAt = retryAt
		e.UpdatedAt = time.Now().UTC()
		switch status {
		case model.OutboxStatusRetry, model.OutboxStatusFailed:
			e.RetryCount++
		case model.OutboxStatusProcessed:
			at := e.UpdatedAt
			e.ProcessedAt = &at
		}
		return nil
	}
	return errors.NotFound("Outbox event", nil)
}

func (r *OutboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.outbox[:0]
	var n int64
	for _, e := range r.s.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.outbox = kept
	return n, nil
}
