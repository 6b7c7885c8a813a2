package audit_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/domain"
	"github.com/metascan/metascan-api/internal/domain/entity"
	"github.com/metascan/metascan-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes em memória dos portos de persistência. Devolvem cópias, como um scan
// de linha faria: mutações só ficam visíveis via Update.
// ──────────────────────────────────────────────────────────────────────────────

type fakeCavRepo struct {
	mu    sync.Mutex
	items map[string]entity.Cavalete
}

func newFakeCavRepo() *fakeCavRepo {
	return &fakeCavRepo{items: make(map[string]entity.Cavalete)}
}

func (r *fakeCavRepo) Create(cav *entity.Cavalete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Code == cav.Code {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, cav.Code)
		}
	}
	r.items[cav.ID] = *cav
	return nil
}

func (r *fakeCavRepo) GetByID(id string) (*entity.Cavalete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeCavRepo) GetByIDForUpdate(id string) (*entity.Cavalete, error) {
	return r.GetByID(id)
}

func (r *fakeCavRepo) Update(cav *entity.Cavalete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cav.ID] = *cav
	return nil
}

func (r *fakeCavRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeCavRepo) List(f repository.CavaleteFilter) ([]*entity.Cavalete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Cavalete
	for _, c := range r.items {
		c := c
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		if f.UserID != nil && (c.UserID == nil || *c.UserID != *f.UserID) {
			continue
		}
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *fakeCavRepo) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *fakeCavRepo) LastCode() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := ""
	for _, c := range r.items {
		if c.Code > last {
			last = c.Code
		}
	}
	return last, nil
}

type fakeSlotRepo struct {
	mu    sync.Mutex
	items map[string]entity.Slot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{items: make(map[string]entity.Slot)}
}

func (r *fakeSlotRepo) CreateBatch(slots []*entity.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slots {
		for _, existing := range r.items {
			if existing.CavaleteID == s.CavaleteID && existing.Side == s.Side && existing.Number == s.Number {
				return fmt.Errorf("%w: posição %s%d", domain.ErrDuplicate, s.Side, s.Number)
			}
		}
		r.items[s.ID] = *s
	}
	return nil
}

func (r *fakeSlotRepo) GetByID(id string) (*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSlotRepo) GetByIDForUpdate(id string) (*entity.Slot, error) {
	return r.GetByID(id)
}

func (r *fakeSlotRepo) Update(slot *entity.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[slot.ID] = *slot
	return nil
}

func (r *fakeSlotRepo) ListByCavalete(cavaleteID string) ([]entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []entity.Slot
	for _, s := range r.items {
		if s.CavaleteID == cavaleteID {
			list = append(list, s)
		}
	}
	sortSlots(list)
	return list, nil
}

func (r *fakeSlotRepo) ListByCavaleteAndStatus(cavaleteID string, status entity.SlotStatus) ([]entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []entity.Slot
	for _, s := range r.items {
		if s.CavaleteID == cavaleteID && s.Status == status {
			list = append(list, s)
		}
	}
	sortSlots(list)
	return list, nil
}

func (r *fakeSlotRepo) UpdateStatus(id string, from, to entity.SlotStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	r.items[id] = s
	return true, nil
}

func sortSlots(list []entity.Slot) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Side != list[j].Side {
			return list[i].Side < list[j].Side
		}
		return list[i].Number < list[j].Number
	})
}

type fakeHistRepo struct {
	mu       sync.Mutex
	cavalete []entity.CavaleteHistory
	slot     []entity.SlotHistory
}

func newFakeHistRepo() *fakeHistRepo {
	return &fakeHistRepo{}
}

func (r *fakeHistRepo) AppendCavalete(h *entity.CavaleteHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cavalete = append(r.cavalete, *h)
	return nil
}

func (r *fakeHistRepo) AppendSlot(h *entity.SlotHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot = append(r.slot, *h)
	return nil
}

func (r *fakeHistRepo) ListCavalete(f repository.HistoryFilter) ([]*entity.CavaleteHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.CavaleteHistory
	for i := len(r.cavalete) - 1; i >= 0; i-- {
		h := r.cavalete[i]
		if f.EntityID != nil && (h.CavaleteID == nil || *h.CavaleteID != *f.EntityID) {
			continue
		}
		if f.Action != nil && h.Action != *f.Action {
			continue
		}
		list = append(list, &h)
	}
	return list, nil
}

func (r *fakeHistRepo) ListSlot(f repository.HistoryFilter) ([]*entity.SlotHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.SlotHistory
	for i := len(r.slot) - 1; i >= 0; i-- {
		h := r.slot[i]
		if f.EntityID != nil && (h.SlotID == nil || *h.SlotID != *f.EntityID) {
			continue
		}
		if f.Action != nil && h.Action != *f.Action {
			continue
		}
		list = append(list, &h)
	}
	return list, nil
}

// slotActions devolve as ações registradas para um slot, na ordem de gravação.
func (r *fakeHistRepo) slotActions(slotID string) []entity.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	var actions []entity.Action
	for _, h := range r.slot {
		if h.SlotID != nil && *h.SlotID == slotID {
			actions = append(actions, h.Action)
		}
	}
	return actions
}

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[string]entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[string]entity.User)}
}

func (r *fakeUserRepo) Create(user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.User
	for _, u := range r.items {
		u := u
		list = append(list, &u)
	}
	return list, nil
}

func (r *fakeUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// fakeTx executa o callback direto sobre os fakes: sem transação real, mas com
// a mesma assinatura do runner de produção.
type fakeTx struct {
	cav  *fakeCavRepo
	slot *fakeSlotRepo
	hist *fakeHistRepo
}

func (t *fakeTx) Run(_ context.Context, fn func(
	cavRepo repository.CavaleteRepository,
	slotRepo repository.SlotRepository,
	histRepo repository.HistoryRepository,
) error) error {
	return fn(t.cav, t.slot, t.hist)
}

// fakeLookup consulta de produtos previsível para os tests.
type fakeLookup struct {
	products map[string]audit.ProductInfo
	err      error
	calls    int
}

func (l *fakeLookup) Lookup(_ context.Context, productCode, _ string) (*audit.ProductInfo, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	p, ok := l.products[productCode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productCode)
	}
	return &p, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Montagem de cenário
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	cav    *fakeCavRepo
	slot   *fakeSlotRepo
	hist   *fakeHistRepo
	users  *fakeUserRepo
	tx     *fakeTx
	lookup *fakeLookup
}

func newFixture() *fixture {
	f := &fixture{
		cav:   newFakeCavRepo(),
		slot:  newFakeSlotRepo(),
		hist:  newFakeHistRepo(),
		users: newFakeUserRepo(),
		lookup: &fakeLookup{products: map[string]audit.ProductInfo{
			"P100": {Code: "P100", Description: "Parafuso sextavado M8"},
			"P200": {Code: "P200", Description: "Arruela lisa 10mm"},
		}},
	}
	f.tx = &fakeTx{cav: f.cav, slot: f.slot, hist: f.hist}
	return f
}

func (f *fixture) cavaleteUC() *audit.CavaleteUseCase {
	return audit.NewCavaleteUseCase(f.tx, f.cav, f.slot, f.users)
}

func (f *fixture) slotUC() *audit.SlotUseCase {
	return audit.NewSlotUseCase(f.tx, f.slot, f.cav, f.lookup)
}

func (f *fixture) addUser(id, username string, role entity.Role) {
	u := entity.User{ID: id, Username: username, Role: role, IsActive: true}
	u.ApplyRolePermissions()
	_ = f.users.Create(&u)
}

func (f *fixture) addCavalete(id, code string, userID *string) *entity.Cavalete {
	status := entity.CavaleteAvailable
	if userID != nil {
		status = entity.CavaleteAssigned
	}
	cav := entity.Cavalete{ID: id, Code: code, Name: entity.DefaultName(code),
		Type: entity.CavaleteCorridor, Status: status, UserID: userID}
	_ = f.cav.Create(&cav)
	return &cav
}

func (f *fixture) addSlot(id, cavaleteID string, side entity.SlotSide, number int, status entity.SlotStatus) *entity.Slot {
	s := entity.Slot{ID: id, CavaleteID: cavaleteID, Side: side, Number: number, Status: status}
	_ = f.slot.CreateBatch([]*entity.Slot{&s})
	return &s
}

var (
	admin   = audit.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
	manager = audit.Actor{UserID: "u-manager", Role: entity.RoleManager}
	auditor = audit.Actor{UserID: "u-auditor", Role: entity.RoleAuditor}
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func historyFilterFor(entityID string) repository.HistoryFilter {
	return repository.HistoryFilter{EntityID: &entityID}
}
