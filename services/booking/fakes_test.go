package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"pcohire/database"
	"pcohire/models"
	"pcohire/services/billing"
	"pcohire/utils"
)

var errBoom = errors.New("boom")

// store is an in-memory record store shared by the repository fakes. The
// transactor snapshots it and restores on failure.
type store struct {
	bookings map[string]models.Booking
	vehicles map[string]models.Vehicle
	writes   int

	failAssign  error
	failRelease error
	failReserve error
	failReturn  error
}

func newStore() *store {
	return &store{bookings: map[string]models.Booking{}, vehicles: map[string]models.Vehicle{}}
}

func (s *store) snapshot() (map[string]models.Booking, map[string]models.Vehicle) {
	b := make(map[string]models.Booking, len(s.bookings))
	for k, v := range s.bookings {
		b[k] = v
	}
	v := make(map[string]models.Vehicle, len(s.vehicles))
	for k, x := range s.vehicles {
		v[k] = x
	}
	return b, v
}

type fakeBookings struct{ s *store }

func (f fakeBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := f.s.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	b.VehicleHistory = append([]models.VehicleHistoryEntry(nil), b.VehicleHistory...)
	return &b, nil
}

func (f fakeBookings) AssignVehicle(ctx context.Context, id string, version int64, a models.VehicleAssignment) error {
	if f.s.failAssign != nil {
		return f.s.failAssign
	}
	b, ok := f.s.bookings[id]
	if !ok || b.Version != version {
		return database.ErrConflict
	}
	b.CurrentVehicleID = a.Vehicle.ID
	b.CarMake, b.CarModel, b.CarRegistration, b.CarColor = a.Vehicle.Make, a.Vehicle.Model, a.Vehicle.Registration, a.Vehicle.Color
	b.WeeklyRate = a.WeeklyRate
	b.VehicleHistory = append(append([]models.VehicleHistoryEntry(nil), b.VehicleHistory...), a.HistoryEntry)
	b.UpdatedAt = a.At
	b.Version++
	f.s.bookings[id] = b
	f.s.writes++
	return nil
}

func (f fakeBookings) ApplyReturnTransition(ctx context.Context, id string, version int64, t models.ReturnTransition) error {
	if f.s.failReturn != nil {
		return f.s.failReturn
	}
	b, ok := f.s.bookings[id]
	if !ok || b.Version != version {
		return database.ErrConflict
	}
	b.ReturnState = t.State
	if t.Status != "" {
		b.Status = t.Status
	}
	if t.CompletedAt != nil {
		b.CompletedAt = t.CompletedAt
	}
	b.UpdatedAt = t.At
	b.Version++
	f.s.bookings[id] = b
	f.s.writes++
	return nil
}

type fakeVehicles struct {
	s        *store
	released []string
}

func (f *fakeVehicles) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	v, ok := f.s.vehicles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &v, nil
}

func (f *fakeVehicles) Reserve(ctx context.Context, vehicleID, bookingID string) error {
	if f.s.failReserve != nil {
		return f.s.failReserve
	}
	v, ok := f.s.vehicles[vehicleID]
	if !ok || !(v.Status == models.VehicleAvailable || v.OwnedBy(bookingID)) {
		return database.ErrConflict
	}
	v.Status = models.VehicleBooked
	v.CurrentBookingID = bookingID
	f.s.vehicles[vehicleID] = v
	f.s.writes++
	return nil
}

func (f *fakeVehicles) Release(ctx context.Context, vehicleID, bookingID string) (bool, error) {
	if f.s.failRelease != nil {
		return false, f.s.failRelease
	}
	v, ok := f.s.vehicles[vehicleID]
	if !ok || (v.CurrentBookingID != bookingID && v.CurrentBookingID != "") {
		return false, nil
	}
	v.Status = models.VehicleAvailable
	v.CurrentBookingID = ""
	f.s.vehicles[vehicleID] = v
	f.released = append(f.released, vehicleID)
	f.s.writes++
	return true, nil
}

type rollbackTx struct {
	s     *store
	calls int
}

func (t *rollbackTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	bookings, vehicles := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.bookings, t.s.vehicles = bookings, vehicles
		return err
	}
	return nil
}

type fakeLedger struct {
	paid    float64
	paidErr error

	sub          *models.Subscription
	instructions []models.PaymentInstruction
	entries      []models.LedgerEntry
}

func (f *fakeLedger) SumSettledRent(ctx context.Context, bookingID string) (float64, error) {
	return f.paid, f.paidErr
}

func (f *fakeLedger) GetActiveSubscription(ctx context.Context, bookingID string) (*models.Subscription, error) {
	if f.sub == nil {
		return nil, database.ErrNotFound
	}
	return f.sub, nil
}

func (f *fakeLedger) GetInstructionByChangeKey(ctx context.Context, changeKey string) (*models.PaymentInstruction, error) {
	for _, instr := range f.instructions {
		if instr.ChangeKey == changeKey {
			return &instr, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeLedger) RecordAdjustment(ctx context.Context, instr models.PaymentInstruction, entries []models.LedgerEntry) error {
	for _, existing := range f.instructions {
		if existing.ID == instr.ID {
			return database.ErrDuplicate
		}
	}
	f.instructions = append(f.instructions, instr)
	f.entries = append(f.entries, entries...)
	return nil
}

// stripeStub answers every charge with the same intent, as Stripe does for a
// repeated idempotency key.
type stripeStub struct {
	keys []string
}

func (g *stripeStub) Charge(ctx context.Context, req billing.ChargeRequest) (*billing.GatewayResult, error) {
	g.keys = append(g.keys, req.IdempotencyKey)
	return &billing.GatewayResult{ID: "pi_same", Status: models.PaymentCompleted}, nil
}

func (g *stripeStub) Refund(ctx context.Context, req billing.RefundRequest) (*billing.GatewayResult, error) {
	g.keys = append(g.keys, req.IdempotencyKey)
	return &billing.GatewayResult{ID: "re_same", Status: models.PaymentRefunded}, nil
}

type directTx struct{}

func (directTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBilling struct {
	requests []billing.AdjustmentRequest
	outcome  billing.AdjustmentOutcome
	err      error
}

func (f *fakeBilling) Settle(ctx context.Context, req billing.AdjustmentRequest) (*billing.AdjustmentOutcome, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	out := f.outcome
	return &out, nil
}

type fakeHistory struct {
	entries []models.BookingHistoryEntry
	err     error
}

func (f *fakeHistory) Create(ctx context.Context, e models.BookingHistoryEntry) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.entries = append(f.entries, e)
	return e.ID, nil
}

func (f *fakeHistory) GetByID(ctx context.Context, id string) (*models.BookingHistoryEntry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeHistory) ListByBooking(ctx context.Context, bookingID string) ([]models.BookingHistoryEntry, error) {
	var out []models.BookingHistoryEntry
	for _, e := range f.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeNotifier struct {
	sent []models.Notification
	err  error
}

func (f *fakeNotifier) Dispatch(ctx context.Context, n models.Notification) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, n)
	return "n-1", nil
}

func (f *fakeNotifier) to(recipientType string) []models.Notification {
	var out []models.Notification
	for _, n := range f.sent {
		if n.RecipientType == recipientType {
			out = append(out, n)
		}
	}
	return out
}

type fakeLocker struct {
	err      error
	acquired []string
	released int
}

func (f *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired = append(f.acquired, key)
	return func() { f.released++ }, nil
}

func kindOf(err error) utils.ErrorKind {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
