package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"realty-service/internal/config"
	"realty-service/internal/hashing"
	"realty-service/internal/model"
	"realty-service/internal/repository"
	rediscache "realty-service/internal/repository/redis"
	"realty-service/internal/search"
)

// In-memory repository fakes. All honor repository.ErrNotFound so
// services exercise the same error paths as against Scylla.

func testHasher() *hashing.Hasher {
	return hashing.NewHasher(&config.Config{
		Hashing: config.HashingConfig{
			Argon2MemoryCost:  8 * 1024,
			Argon2TimeCost:    1,
			Argon2Parallelism: 1,
		},
	})
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.Admin
	nextID int
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[string]*model.Admin{}}
}

func (r *fakeAdminRepo) Create(admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if admin.AdminID == "" {
		r.nextID++
		admin.AdminID = fakeID("admin", r.nextID)
	}
	clone := *admin
	r.admins[admin.AdminID] = &clone
	return nil
}

func (r *fakeAdminRepo) GetByID(id string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAdminRepo) GetByEmail(email string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAdminRepo) GetByUsername(username string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAdminRepo) List() ([]*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Admin, 0, len(r.admins))
	for _, a := range r.admins {
		clone := *a
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeAdminRepo) Update(admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[admin.AdminID]; !ok {
		return repository.ErrNotFound
	}
	clone := *admin
	r.admins[admin.AdminID] = &clone
	return nil
}

func (r *fakeAdminRepo) UpdatePassword(id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Password = hash
	return nil
}

func (r *fakeAdminRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.admins, id)
	return nil
}

type fakeAgentRepo struct {
	mu              sync.Mutex
	agents          map[string]*model.Agent
	temps           map[string]*model.TemporaryAgent
	nextID          int
	failDeleteTemp  bool
	deleteTempCalls int
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{
		agents: map[string]*model.Agent{},
		temps:  map[string]*model.TemporaryAgent{},
	}
}

func (r *fakeAgentRepo) Create(agent *model.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agent.AgentID == "" {
		r.nextID++
		agent.AgentID = fakeID("agent", r.nextID)
	}
	clone := *agent
	r.agents[agent.AgentID] = &clone
	return nil
}

func (r *fakeAgentRepo) GetByID(id string) (*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAgentRepo) GetByEmail(email string) (*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAgentRepo) GetByUsername(username string) (*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.UserName == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAgentRepo) List() ([]*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		clone := *a
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeAgentRepo) Update(agent *model.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[agent.AgentID]; !ok {
		return repository.ErrNotFound
	}
	clone := *agent
	r.agents[agent.AgentID] = &clone
	return nil
}

func (r *fakeAgentRepo) UpdatePassword(id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Password = hash
	return nil
}

func (r *fakeAgentRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.agents, id)
	return nil
}

func (r *fakeAgentRepo) CreateTemporary(agent *model.TemporaryAgent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agent.TempAgentID == "" {
		r.nextID++
		agent.TempAgentID = fakeID("temp-agent", r.nextID)
	}
	clone := *agent
	r.temps[agent.TempAgentID] = &clone
	return nil
}

func (r *fakeAgentRepo) GetTemporaryByID(id string) (*model.TemporaryAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.temps[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAgentRepo) GetTemporaryByEmail(email string) (*model.TemporaryAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.temps {
		if t.Email == email {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAgentRepo) GetTemporaryByUsername(username string) (*model.TemporaryAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.temps {
		if t.UserName == username {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAgentRepo) ListTemporary() ([]*model.TemporaryAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.TemporaryAgent, 0, len(r.temps))
	for _, t := range r.temps {
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeAgentRepo) DeleteTemporary(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteTempCalls++
	if r.failDeleteTemp {
		return errors.New("simulated delete failure")
	}
	delete(r.temps, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User
	temps  map[string]*model.TemporaryUser
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: map[string]*model.User{},
		temps: map[string]*model.TemporaryUser{},
	}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.UserID == "" {
		r.nextID++
		user.UserID = fakeID("user", r.nextID)
	}
	clone := *user
	r.users[user.UserID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List() ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.UserID]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	r.users[user.UserID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdatePassword(id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (r *fakeUserRepo) UpdateProfilePicture(id string, picture []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProfilePicture = picture
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) CreateTemporary(user *model.TemporaryUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.TempUserID == "" {
		r.nextID++
		user.TempUserID = fakeID("temp-user", r.nextID)
	}
	clone := *user
	r.temps[user.TempUserID] = &clone
	return nil
}

func (r *fakeUserRepo) GetTemporaryByID(id string) (*model.TemporaryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.temps[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetTemporaryByEmail(email string) (*model.TemporaryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.temps {
		if t.Email == email {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetTemporaryByOTP(code string) (*model.TemporaryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.temps {
		if t.OTP == code {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) DeleteTemporary(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.temps, id)
	return nil
}

type fakePropertyRepo struct {
	mu      sync.Mutex
	pending map[string]*model.PendingProperty
	live    map[string]*model.Property
	nextID  int
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{
		pending: map[string]*model.PendingProperty{},
		live:    map[string]*model.Property{},
	}
}

func (r *fakePropertyRepo) CreatePending(p *model.PendingProperty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.PropertyID == "" {
		r.nextID++
		p.PropertyID = fakeID("prop", r.nextID)
	}
	clone := *p
	r.pending[p.PropertyID] = &clone
	return nil
}

func (r *fakePropertyRepo) GetPendingByID(id string) (*model.PendingProperty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pending[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakePropertyRepo) ListPending() ([]*model.PendingProperty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.PendingProperty, 0, len(r.pending))
	for _, p := range r.pending {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakePropertyRepo) ListPendingByAgent(agentID string) ([]*model.PendingProperty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PendingProperty
	for _, p := range r.pending {
		if p.AgentID == agentID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) UpdatePending(p *model.PendingProperty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pending[p.PropertyID]; !ok {
		return repository.ErrNotFound
	}
	clone := *p
	r.pending[p.PropertyID] = &clone
	return nil
}

func (r *fakePropertyRepo) DeletePending(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	return nil
}

func (r *fakePropertyRepo) Create(p *model.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.PropertyID == "" {
		r.nextID++
		p.PropertyID = fakeID("prop", r.nextID)
	}
	clone := *p
	r.live[p.PropertyID] = &clone
	return nil
}

func (r *fakePropertyRepo) GetByID(id string) (*model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.live[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakePropertyRepo) List() ([]*model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Property, 0, len(r.live))
	for _, p := range r.live {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakePropertyRepo) ListByAgent(agentID string) ([]*model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Property
	for _, p := range r.live {
		if p.AgentID == agentID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) Update(p *model.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[p.PropertyID]; !ok {
		return repository.ErrNotFound
	}
	clone := *p
	r.live[p.PropertyID] = &clone
	return nil
}

func (r *fakePropertyRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
	return nil
}

type fakeBlogRepo struct {
	mu     sync.Mutex
	blogs  map[string]*model.Blog
	nextID int
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{blogs: map[string]*model.Blog{}}
}

func (r *fakeBlogRepo) Create(blog *model.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if blog.BlogID == "" {
		r.nextID++
		blog.BlogID = fakeID("blog", r.nextID)
	}
	clone := *blog
	r.blogs[blog.BlogID] = &clone
	return nil
}

func (r *fakeBlogRepo) GetByID(id string) (*model.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.blogs[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBlogRepo) List() ([]*model.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Blog, 0, len(r.blogs))
	for _, b := range r.blogs {
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeBlogRepo) Update(blog *model.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[blog.BlogID]; !ok {
		return repository.ErrNotFound
	}
	clone := *blog
	r.blogs[blog.BlogID] = &clone
	return nil
}

func (r *fakeBlogRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blogs, id)
	return nil
}

type fakeOTPRepo struct {
	mu             sync.Mutex
	otps           map[string]*model.PasswordOTP
	nextID         int
	getByCodeCalls int
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{otps: map[string]*model.PasswordOTP{}}
}

func (r *fakeOTPRepo) Create(otp *model.PasswordOTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if otp.OTPID == "" {
		r.nextID++
		otp.OTPID = fakeID("otp", r.nextID)
	}
	clone := *otp
	r.otps[otp.OTPID] = &clone
	return nil
}

func (r *fakeOTPRepo) GetByCode(code string) (*model.PasswordOTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByCodeCalls++
	for _, o := range r.otps {
		if o.Code == code {
			clone := *o
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOTPRepo) DeleteByIdentity(kind model.IdentityKind, identityID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var codes []string
	for id, o := range r.otps {
		if o.Kind == kind && o.IdentityID == identityID {
			codes = append(codes, o.Code)
			delete(r.otps, id)
		}
	}
	return codes, nil
}

func (r *fakeOTPRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, id)
	return nil
}

func (r *fakeOTPRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.otps)
}

// fakeOTPCache implements OTPCodeCache over a map.
type fakeOTPCache struct {
	mu    sync.Mutex
	codes map[string]*model.PasswordOTP
}

func newFakeOTPCache() *fakeOTPCache {
	return &fakeOTPCache{codes: map[string]*model.PasswordOTP{}}
}

func (c *fakeOTPCache) SetOTP(otp *model.PasswordOTP) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *otp
	c.codes[otp.Code] = &clone
	return nil
}

func (c *fakeOTPCache) GetOTP(code string) (*model.PasswordOTP, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if otp, ok := c.codes[code]; ok {
		clone := *otp
		return &clone, nil
	}
	return nil, rediscache.ErrCacheMiss
}

func (c *fakeOTPCache) DeleteOTP(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, code)
	return nil
}

// fakeNotifier records sent mail and can be told to fail.
type fakeNotifier struct {
	mu       sync.Mutex
	sent     []string
	failNext bool
}

func (n *fakeNotifier) record(kind, to string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext {
		n.failNext = false
		return errors.New("simulated mail failure")
	}
	n.sent = append(n.sent, kind+":"+to)
	return nil
}

func (n *fakeNotifier) sentMail() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func (n *fakeNotifier) SendAgentApproved(to, _ string) error    { return n.record("agent-approved", to) }
func (n *fakeNotifier) SendAgentRejected(to, _ string) error    { return n.record("agent-rejected", to) }
func (n *fakeNotifier) SendPropertyApproved(to, _ string) error { return n.record("prop-approved", to) }
func (n *fakeNotifier) SendPropertyRejected(to, _ string) error { return n.record("prop-rejected", to) }
func (n *fakeNotifier) SendPropertySubmitted(reviewer, _, _ string) error {
	return n.record("prop-submitted", reviewer)
}
func (n *fakeNotifier) SendPasswordResetOTP(to, code string) error {
	return n.record("reset-otp:"+code, to)
}
func (n *fakeNotifier) SendRegistrationOTP(to, code string) error {
	return n.record("reg-otp:"+code, to)
}

// lastOTPCode extracts the code from the most recent OTP mail.
func (n *fakeNotifier) lastOTPCode() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		entry := n.sent[i]
		// format: {reset,reg}-otp:<code>:<to>
		var prefixLen int
		switch {
		case len(entry) > 10 && entry[:10] == "reset-otp:":
			prefixLen = 10
		case len(entry) > 8 && entry[:8] == "reg-otp:":
			prefixLen = 8
		default:
			continue
		}
		return entry[prefixLen : prefixLen+6]
	}
	return ""
}

// fakeIndexer implements PropertyIndexer over a map.
type fakeIndexer struct {
	mu      sync.Mutex
	docs    map[string]*model.Property
	failing bool
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{docs: map[string]*model.Property{}}
}

func (i *fakeIndexer) IndexProperty(_ context.Context, p *model.Property) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.failing {
		return errors.New("simulated index failure")
	}
	clone := *p
	i.docs[p.PropertyID] = &clone
	return nil
}

func (i *fakeIndexer) RemoveProperty(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.failing {
		return errors.New("simulated index failure")
	}
	delete(i.docs, id)
	return nil
}

func (i *fakeIndexer) SearchIDs(_ context.Context, criteria *search.Criteria) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.failing {
		return nil, errors.New("simulated index failure")
	}
	var ids []string
	for id, p := range i.docs {
		if criteria.Matches(p) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func fakeID(prefix string, n int) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}
