package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Source says which cart the session currently treats as authoritative.
type Source string

const (
	SourceLocal  Source = "local"
	SourceServer Source = "server"
)

type inflightAdd struct {
	Key      string `json:"key"`
	Quantity uint   `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

// syncState is persisted under SyncKey while a merge has not completed.
// Applied records, per account, how much of each product already reached
// that account's server cart. Inflight holds adds that were sent but whose
// outcome is unknown; they are retried with the same idempotency key.
type syncState struct {
	Pending  bool                                    `json:"pending"`
	Applied  map[uuid.UUID]map[uuid.UUID]uint        `json:"applied,omitempty"`
	Inflight map[uuid.UUID]map[uuid.UUID]inflightAdd `json:"inflight,omitempty"`
}

func (st *syncState) applied(acct, product uuid.UUID) uint {
	return st.Applied[acct][product]
}

func (st *syncState) addApplied(acct, product uuid.UUID, qty uint) {
	if st.Applied == nil {
		st.Applied = map[uuid.UUID]map[uuid.UUID]uint{}
	}
	if st.Applied[acct] == nil {
		st.Applied[acct] = map[uuid.UUID]uint{}
	}
	st.Applied[acct][product] += qty
}

func (st *syncState) inflight(acct, product uuid.UUID) (inflightAdd, bool) {
	inf, ok := st.Inflight[acct][product]
	return inf, ok
}

func (st *syncState) setInflight(acct, product uuid.UUID, inf inflightAdd) {
	if st.Inflight == nil {
		st.Inflight = map[uuid.UUID]map[uuid.UUID]inflightAdd{}
	}
	if st.Inflight[acct] == nil {
		st.Inflight[acct] = map[uuid.UUID]inflightAdd{}
	}
	st.Inflight[acct][product] = inf
}

func (st *syncState) clearInflight(acct, product uuid.UUID) {
	delete(st.Inflight[acct], product)
}

type savedSession struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Account      Account `json:"account"`
}

// ReconcileResult describes one merge of the local cart into the server cart.
type ReconcileResult struct {
	// Applied counts adds the server accepted during this merge.
	Applied int
	// Replayed counts adds the server had already applied before.
	Replayed int
	// Skipped lines were rejected by the server for good, for example
	// because the product is no longer sold.
	Skipped []LocalLine
}

// Session holds one shopper's client-side state. It is safe for concurrent
// use; calls are serialized.
type Session struct {
	client *Client
	store  Store
	newKey func() string

	mu      sync.Mutex
	source  Source
	account *Account
	local   []LocalLine
	state   syncState
	view    *Cart
}

// NewSession reads the local cart and any unfinished merge from the store.
// The session starts anonymous; call Resume to restore saved credentials.
func NewSession(client *Client, store Store) (*Session, error) {
	local, err := LoadLocalCart(store)
	if err != nil {
		return nil, err
	}
	s := &Session{
		client: client,
		store:  store,
		newKey: uuid.NewString,
		source: SourceLocal,
		local:  local,
		view:   localView(local),
	}
	if _, err := loadJSON(store, SyncKey, &s.state); err != nil {
		return nil, err
	}
	return s, nil
}

// Client is the API client the session signs requests with.
func (s *Session) Client() *Client { return s.client }

func (s *Session) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// PendingSync reports whether a merge of the local cart is still owed.
func (s *Session) PendingSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pending
}

// Account is nil while anonymous.
func (s *Session) Account() *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil
	}
	acc := *s.account
	return &acc
}

// LocalCart returns the persisted anonymous cart lines.
func (s *Session) LocalCart() []LocalLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LocalLine(nil), s.local...)
}

func (s *Session) saveSession() error {
	access, refresh := s.client.Tokens()
	return saveJSON(s.store, SessionKey, savedSession{AccessToken: access, RefreshToken: refresh, Account: *s.account})
}

func (s *Session) dropSession() error {
	s.client.SetTokens("", "")
	s.account = nil
	s.source = SourceLocal
	s.view = localView(s.local)
	return s.store.Delete(SessionKey)
}

func (s *Session) saveSync() error {
	return saveJSON(s.store, SyncKey, s.state)
}

func (s *Session) saveLocal() error {
	s.view = localView(s.local)
	return SaveLocalCart(s.store, s.local)
}

// Resume restores saved credentials. A rejected access token is refreshed
// once; when that fails too the session stays anonymous without error.
// A pending merge is retried.
func (s *Session) Resume(ctx context.Context) (*ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var saved savedSession
	ok, err := loadJSON(s.store, SessionKey, &saved)
	if err != nil || !ok {
		return nil, err
	}
	s.client.SetTokens(saved.AccessToken, saved.RefreshToken)

	acc, err := s.client.Me(ctx)
	if errors.Is(err, ErrUnauthorized) {
		if _, rerr := s.client.Refresh(ctx); rerr == nil {
			acc, err = s.client.Me(ctx)
		}
	}
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, s.dropSession()
		}
		s.client.SetTokens("", "")
		return nil, err
	}

	s.account = acc
	if err := s.saveSession(); err != nil {
		return nil, err
	}
	return s.reconcile(ctx)
}

func (s *Session) signedIn(ctx context.Context, res *AuthResult) (*ReconcileResult, error) {
	acc := res.Account
	s.account = &acc
	if err := s.saveSession(); err != nil {
		return nil, err
	}
	return s.reconcile(ctx)
}

// Login signs in and merges the local cart into the account's server cart.
// A failed sign-in leaves the session untouched. A failed merge keeps the
// local cart as the view and returns an error wrapping ErrReconcilePending.
func (s *Session) Login(ctx context.Context, email, password string) (*ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signedIn(ctx, res)
}

// Register creates the account, signs in and merges the local cart like Login.
func (s *Session) Register(ctx context.Context, in RegisterInput) (*ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.client.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.signedIn(ctx, res)
}

// Reconcile retries a pending merge for the signed-in account.
func (s *Session) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil, ErrAuthRequired
	}
	return s.reconcile(ctx)
}

// reconcile sends one add per coalesced local line, sequentially, then makes
// the server cart the view. Each add carries an idempotency key that is
// persisted before the request goes out, so retrying after a lost response
// never applies a line twice.
func (s *Session) reconcile(ctx context.Context) (*ReconcileResult, error) {
	acct := s.account.ID
	res := &ReconcileResult{}

	for _, line := range Coalesce(s.local) {
		if err := s.mergeLine(ctx, acct, line, res); err != nil {
			return res, s.failSync(err)
		}
	}

	cart, err := s.client.Cart(ctx)
	if err != nil {
		return res, s.failSync(err)
	}

	s.local = nil
	if err := SaveLocalCart(s.store, nil); err != nil {
		return res, err
	}
	s.state = syncState{}
	if err := s.store.Delete(SyncKey); err != nil {
		return res, err
	}
	s.source = SourceServer
	s.view = cart
	return res, nil
}

func (s *Session) mergeLine(ctx context.Context, acct uuid.UUID, line LocalLine, res *ReconcileResult) error {
	if inf, ok := s.state.inflight(acct, line.ProductID); ok {
		skipped, err := s.apply(ctx, acct, line.ProductID, inf, res)
		if err != nil {
			return err
		}
		if skipped {
			res.Skipped = append(res.Skipped, line)
			return nil
		}
	}

	done := s.state.applied(acct, line.ProductID)
	if line.Quantity <= done {
		return nil
	}
	inf := inflightAdd{Key: s.newKey(), Quantity: line.Quantity - done, Note: line.Note}
	s.state.setInflight(acct, line.ProductID, inf)
	if err := s.saveSync(); err != nil {
		return err
	}

	skipped, err := s.apply(ctx, acct, line.ProductID, inf, res)
	if err != nil {
		return err
	}
	if skipped {
		res.Skipped = append(res.Skipped, line)
	}
	return nil
}

// apply sends one add. Rejections that a retry cannot fix mark the line as
// skipped; anything else is returned and leaves the add in flight.
func (s *Session) apply(ctx context.Context, acct, product uuid.UUID, inf inflightAdd, res *ReconcileResult) (bool, error) {
	out, err := s.client.AddToCart(ctx, product, inf.Quantity, inf.Note, inf.Key)
	switch {
	case err == nil:
		s.state.addApplied(acct, product, inf.Quantity)
		if out.Applied {
			res.Applied++
		} else {
			res.Replayed++
		}
	case permanent(err):
	default:
		return false, err
	}
	s.state.clearInflight(acct, product)
	return err != nil, s.saveSync()
}

func permanent(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}

func (s *Session) failSync(cause error) error {
	s.state.Pending = true
	s.source = SourceLocal
	s.view = localView(s.local)
	if err := s.saveSync(); err != nil {
		return errors.Join(fmt.Errorf("%w: %w", ErrReconcilePending, cause), err)
	}
	return fmt.Errorf("%w: %w", ErrReconcilePending, cause)
}

// Logout revokes the session server-side and returns to the anonymous local
// cart. Local state is reset even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.client.Logout(ctx)
	if derr := s.dropSession(); derr != nil {
		return errors.Join(err, derr)
	}
	return err
}

func (s *Session) serverMode() bool {
	return s.source == SourceServer && s.account != nil
}

// refreshOnce rotates the tokens after a 401. It reports whether the caller
// should retry; when refreshing fails the session falls back to anonymous.
func (s *Session) refreshOnce(ctx context.Context) bool {
	if _, err := s.client.Refresh(ctx); err != nil {
		_ = s.dropSession()
		return false
	}
	_ = s.saveSession()
	return true
}

// Cart returns the current cart view. Signed-in shoppers get the server
// cart. Anonymous shoppers, or ones whose credentials were rejected, get the
// local cart and no error.
func (s *Session) Cart(ctx context.Context) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.serverMode() {
		cart, err := s.client.Cart(ctx)
		if errors.Is(err, ErrUnauthorized) && s.refreshOnce(ctx) {
			cart, err = s.client.Cart(ctx)
		}
		switch {
		case err == nil:
			s.view = cart
		case errors.Is(err, ErrUnauthorized):
			_ = s.dropSession()
		default:
			return nil, err
		}
	}
	view := *s.view
	view.Items = append([]CartLine(nil), s.view.Items...)
	return &view, nil
}

// Add puts quantity of the product into the cart. Server adds carry a fresh
// idempotency key; local adds are persisted immediately.
func (s *Session) Add(ctx context.Context, productID uuid.UUID, quantity uint, note string) error {
	if quantity == 0 || productID == uuid.Nil {
		return fmt.Errorf("product and a positive quantity required: %w", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.serverMode() {
		key := s.newKey()
		res, err := s.client.AddToCart(ctx, productID, quantity, note, key)
		if errors.Is(err, ErrUnauthorized) && s.refreshOnce(ctx) {
			res, err = s.client.AddToCart(ctx, productID, quantity, note, key)
		}
		if err == nil {
			s.view = &res.Cart
			return nil
		}
		if !errors.Is(err, ErrUnauthorized) {
			return err
		}
		_ = s.dropSession()
	}

	s.local = Coalesce(append(s.local, LocalLine{ProductID: productID, Quantity: quantity, Note: note}))
	return s.saveLocal()
}

// SetQuantity changes the product's line. Zero removes it.
func (s *Session) SetQuantity(ctx context.Context, productID uuid.UUID, quantity uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.serverMode() {
		cart, err := s.client.Cart(ctx)
		if err != nil {
			return err
		}
		line, ok := cart.Line(productID)
		if !ok {
			return ErrNotFound
		}
		if quantity == 0 {
			err = s.client.RemoveCartItem(ctx, line.ID)
		} else {
			_, err = s.client.UpdateCartItem(ctx, line.ID, &quantity, nil)
		}
		if err != nil {
			return err
		}
		if s.view, err = s.client.Cart(ctx); err != nil {
			return err
		}
		return nil
	}

	lines := Coalesce(s.local)
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if quantity == 0 {
			lines = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = quantity
		}
		s.local = lines
		return s.saveLocal()
	}
	return ErrNotFound
}

func (s *Session) Remove(ctx context.Context, productID uuid.UUID) error {
	return s.SetQuantity(ctx, productID, 0)
}

// Clear empties the authoritative cart. Clearing the local cart also drops
// any pending merge.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.serverMode() {
		if err := s.client.ClearCart(ctx); err != nil {
			return err
		}
		s.view = &Cart{Items: []CartLine{}}
		return nil
	}

	s.local = nil
	s.state = syncState{}
	if err := s.store.Delete(SyncKey); err != nil {
		return err
	}
	return s.saveLocal()
}

// Checkout places an order from the server cart. It needs a signed-in
// shopper whose local cart has been merged; otherwise nothing is sent and
// the cart is kept.
func (s *Session) Checkout(ctx context.Context, in CheckoutInput) (*Placed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account == nil {
		return nil, ErrAuthRequired
	}
	if s.state.Pending {
		return nil, ErrReconcilePending
	}
	if !s.serverMode() {
		return nil, ErrAuthRequired
	}

	placed, err := s.client.Checkout(ctx, in)
	if err != nil {
		return nil, err
	}
	s.view = &Cart{Items: []CartLine{}}
	s.local = nil
	if err := SaveLocalCart(s.store, nil); err != nil {
		return placed, err
	}
	return placed, nil
}
