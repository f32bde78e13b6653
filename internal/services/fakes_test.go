package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stayshare/internal/domain"
)

// fakeClock implements domain.Clock with a fixed instant.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
	getErr  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.add(u)
	return nil
}

// fakeHostRepo implements domain.HostRepository for tests.
type fakeHostRepo struct {
	byID map[string]*domain.Host
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{byID: make(map[string]*domain.Host)}
}

func (f *fakeHostRepo) Create(ctx context.Context, h *domain.Host) error {
	f.byID[h.ID] = h
	return nil
}

func (f *fakeHostRepo) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	if h, ok := f.byID[id]; ok {
		return h, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeHostRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Host, error) {
	var hosts []*domain.Host
	for _, h := range f.byID {
		if h.OwnerID == ownerID {
			hosts = append(hosts, h)
		}
	}
	return hosts, nil
}

// fakeAvailabilityRepo implements domain.AvailabilityRepository for tests.
type fakeAvailabilityRepo struct {
	intervals   []*domain.AvailabilityInterval
	searchHosts []*domain.Host
	nextID      int
	createErr   error
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{}
}

func (f *fakeAvailabilityRepo) Create(ctx context.Context, iv *domain.AvailabilityInterval) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	iv.ID = fmt.Sprintf("interval-%d", f.nextID)
	f.intervals = append(f.intervals, iv)
	return nil
}

func (f *fakeAvailabilityRepo) ListByHost(ctx context.Context, hostID string) ([]*domain.AvailabilityInterval, error) {
	out := []*domain.AvailabilityInterval{}
	for _, iv := range f.intervals {
		if iv.HostID == hostID {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeAvailabilityRepo) ListAvailableOverlapping(ctx context.Context, start, end time.Time) ([]*domain.AvailabilityInterval, error) {
	out := []*domain.AvailabilityInterval{}
	for _, iv := range f.intervals {
		if iv.Status == domain.IntervalAvailable && iv.Overlaps(start, end) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeAvailabilityRepo) SearchAvailableHosts(ctx context.Context, start, end time.Time, textFilter string) ([]*domain.Host, error) {
	if f.searchHosts == nil {
		return []*domain.Host{}, nil
	}
	return f.searchHosts, nil
}

// fakeBookingRepo implements domain.BookingRepository for tests. Approval
// reconciles against the linked fakeAvailabilityRepo the same way the real
// repository does: exact bracket flips, anything else inserts.
type fakeBookingRepo struct {
	byID       map[string]*domain.BookingRequest
	avail      *fakeAvailabilityRepo
	nextID     int
	approveErr error
}

func newFakeBookingRepo(avail *fakeAvailabilityRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		byID:  make(map[string]*domain.BookingRequest),
		avail: avail,
	}
}

func (f *fakeBookingRepo) Create(ctx context.Context, req *domain.BookingRequest) error {
	f.nextID++
	req.ID = fmt.Sprintf("booking-%d", f.nextID)
	f.byID[req.ID] = req
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	if req, ok := f.byID[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, responseMessage string, respondedAt time.Time) error {
	req, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	req.ResponseMessage = responseMessage
	req.RespondedAt = &respondedAt
	return nil
}

func (f *fakeBookingRepo) ApproveAndReconcile(ctx context.Context, req *domain.BookingRequest, responseMessage string, respondedAt time.Time) (*domain.AvailabilityInterval, bool, error) {
	if f.approveErr != nil {
		return nil, false, f.approveErr
	}
	stored, ok := f.byID[req.ID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	stored.Status = domain.BookingApproved
	stored.ResponseMessage = responseMessage
	stored.RespondedAt = &respondedAt

	for _, iv := range f.avail.intervals {
		if iv.HostID == req.HostID && iv.Status == domain.IntervalAvailable &&
			iv.StartDate.Equal(req.StartDate) && iv.EndDate.Equal(req.EndDate) {
			iv.Status = domain.IntervalBooked
			if iv.Notes == "" {
				iv.Notes = "booked for " + req.RequesterID
			} else {
				iv.Notes = iv.Notes + " | booked for " + req.RequesterID
			}
			iv.UpdatedAt = respondedAt
			return iv, false, nil
		}
	}
	iv := domain.NewAvailabilityInterval(req.HostID, req.StartDate, req.EndDate, domain.IntervalBooked, "booked for "+req.RequesterID, respondedAt, respondedAt)
	_ = f.avail.Create(ctx, iv)
	return iv, true, nil
}

func (f *fakeBookingRepo) ListByHost(ctx context.Context, hostID string) ([]*domain.BookingRequest, error) {
	out := []*domain.BookingRequest{}
	for _, req := range f.byID {
		if req.HostID == hostID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByRequester(ctx context.Context, requesterID string) ([]*domain.BookingRequest, error) {
	out := []*domain.BookingRequest{}
	for _, req := range f.byID {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	return out, nil
}

// fakeConnectionRepo implements domain.ConnectionRepository for tests.
type fakeConnectionRepo struct {
	byID   map[string]*domain.Connection
	nextID int
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{byID: make(map[string]*domain.Connection)}
}

func (f *fakeConnectionRepo) Create(ctx context.Context, c *domain.Connection) error {
	for _, existing := range f.byID {
		if existing.UserAID == c.UserAID && existing.UserBID == c.UserBID {
			return domain.ErrAlreadyConnected
		}
	}
	f.nextID++
	c.ID = fmt.Sprintf("conn-%d", f.nextID)
	f.byID[c.ID] = c
	return nil
}

func (f *fakeConnectionRepo) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConnectionRepo) GetByPair(ctx context.Context, a, b string) (*domain.Connection, error) {
	ca, cb := domain.CanonicalPair(a, b)
	for _, c := range f.byID {
		if c.UserAID == ca && c.UserBID == cb {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConnectionRepo) UpdateStatus(ctx context.Context, id string, status domain.ConnectionStatus, updatedAt time.Time) error {
	c, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = updatedAt
	return nil
}

func (f *fakeConnectionRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeConnectionRepo) ListAcceptedByUser(ctx context.Context, userID string) ([]*domain.Connection, error) {
	out := []*domain.Connection{}
	for _, c := range f.byID {
		if c.Status == domain.ConnectionAccepted && c.Involves(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConnectionRepo) ListPendingTo(ctx context.Context, userID string) ([]*domain.Connection, error) {
	out := []*domain.Connection{}
	for _, c := range f.byID {
		if c.Status == domain.ConnectionPending && c.Involves(userID) && c.RequesterID != userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeInvitationRepo implements domain.InvitationRepository for tests. The
// transactional accept methods record their side effects on the linked
// fakeUserRepo and fakeConnectionRepo.
type fakeInvitationRepo struct {
	byID    map[string]*domain.Invitation
	users   *fakeUserRepo
	conns   *fakeConnectionRepo
	nextID  int
}

func newFakeInvitationRepo(users *fakeUserRepo, conns *fakeConnectionRepo) *fakeInvitationRepo {
	return &fakeInvitationRepo{
		byID:  make(map[string]*domain.Invitation),
		users: users,
		conns: conns,
	}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	f.nextID++
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.byID[inv.ID] = inv
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := f.byID[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	for _, inv := range f.byID {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) FindPendingByInviterEmail(ctx context.Context, inviterID, inviteeEmail string) (*domain.Invitation, error) {
	for _, inv := range f.byID {
		if inv.InviterID == inviterID && inv.InviteeEmail == inviteeEmail && inv.Status == domain.InvitationPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (f *fakeInvitationRepo) AcceptExisting(ctx context.Context, id string, acceptedAt time.Time, conn *domain.Connection) error {
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := f.conns.Create(ctx, conn); err != nil {
		return err
	}
	inv.Status = domain.InvitationAccepted
	inv.AcceptedAt = &acceptedAt
	return nil
}

func (f *fakeInvitationRepo) AcceptNew(ctx context.Context, id string, acceptedAt time.Time, newUser *domain.User, inviterID, relationship string) error {
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := f.users.Create(ctx, newUser); err != nil {
		return err
	}
	conn := domain.NewConnection(inviterID, newUser.ID, relationship, domain.ConnectionAccepted, acceptedAt, acceptedAt)
	if err := f.conns.Create(ctx, conn); err != nil {
		return err
	}
	inv.Status = domain.InvitationAccepted
	inv.AcceptedAt = &acceptedAt
	return nil
}

func (f *fakeInvitationRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeInvitationRepo) ListByInviter(ctx context.Context, inviterID string) ([]*domain.Invitation, error) {
	out := []*domain.Invitation{}
	for _, inv := range f.byID {
		if inv.InviterID == inviterID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeEmailService implements domain.EmailService for tests.
type fakeEmailService struct {
	sent []*domain.InvitationEmailData
	err  error
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// day is shorthand for a UTC calendar day in tests.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
