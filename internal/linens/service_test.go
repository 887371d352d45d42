package linens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linentrack/linentrack/internal/shared"
)

type memoryLinenRepo struct {
	linens   map[int64]Linen
	products map[int64]string
	activity []ActivityLog
	events   []string
	nextID   int64
}

func newMemoryLinenRepo() *memoryLinenRepo {
	return &memoryLinenRepo{
		linens:   make(map[int64]Linen),
		products: map[int64]string{11: "ผ้าปูเตียง", 12: "ปลอกหมอน"},
	}
}

func (r *memoryLinenRepo) Insert(ctx context.Context, linen Linen) (int64, error) {
	for _, existing := range r.linens {
		if existing.RFIDTag == linen.RFIDTag {
			return 0, ErrDuplicate
		}
	}
	r.nextID++
	linen.ID = r.nextID
	r.linens[linen.ID] = linen
	return linen.ID, nil
}

func (r *memoryLinenRepo) Get(ctx context.Context, id int64) (Linen, string, error) {
	linen, ok := r.linens[id]
	if !ok {
		return Linen{}, "", ErrNotFound
	}
	return linen, r.products[linen.ProductID], nil
}

func (r *memoryLinenRepo) FindByRFID(ctx context.Context, tag string) (Linen, error) {
	for _, linen := range r.linens {
		if linen.RFIDTag == tag {
			return linen, nil
		}
	}
	return Linen{}, ErrNotFound
}

func (r *memoryLinenRepo) ListActive(ctx context.Context) ([]Detail, error) {
	details := []Detail{}
	for _, linen := range r.linens {
		if !linen.IsActive {
			continue
		}
		details = append(details, Detail{
			ID:           linen.ID,
			RFIDTag:      linen.RFIDTag,
			ProductID:    linen.ProductID,
			ProductName:  r.products[linen.ProductID],
			Status:       linen.Status,
			RegisteredAt: linen.RegisteredAt,
			UpdatedAt:    linen.UpdatedAt,
		})
	}
	return details, nil
}

func (r *memoryLinenRepo) Discard(ctx context.Context, tag, reasonLabel string, at time.Time) error {
	for id, linen := range r.linens {
		if linen.RFIDTag == tag {
			linen.IsActive = false
			linen.Status = reasonLabel
			linen.UpdatedAt = at
			r.linens[id] = linen
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryLinenRepo) DiscardHistory(ctx context.Context, limit int) ([]DiscardRecord, error) {
	records := []DiscardRecord{}
	for _, linen := range r.linens {
		if linen.IsActive || linen.Status == StatusAvailable {
			continue
		}
		item := r.products[linen.ProductID]
		if item == "" {
			item = "RFID: " + linen.RFIDTag
		}
		records = append(records, DiscardRecord{
			ID:     linen.ID,
			Item:   item,
			Reason: linen.Status,
			Time:   linen.UpdatedAt.Format(feedTimeLayout),
		})
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

func (r *memoryLinenRepo) Monitor(ctx context.Context, limit int) ([]MonitorEntry, error) {
	entries := []MonitorEntry{}
	for _, linen := range r.linens {
		name := r.products[linen.ProductID]
		if name == "" {
			name = "Unknown"
		}
		entries = append(entries, MonitorEntry{
			RFIDTag:     linen.RFIDTag,
			ProductName: name,
			Location:    locationFor(linen.Status),
			Status:      linen.Status,
			Timestamp:   linen.UpdatedAt.Format("15:04:05"),
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (r *memoryLinenRepo) DeleteWithLog(ctx context.Context, id int64, entry shared.AuditLog) error {
	if _, ok := r.linens[id]; !ok {
		return ErrNotFound
	}
	r.events = append(r.events, "audit:"+entry.Action)
	r.events = append(r.events, "delete")
	delete(r.linens, id)
	return nil
}

func (r *memoryLinenRepo) AppendActivity(ctx context.Context, log ActivityLog) (int64, error) {
	r.nextID++
	log.ID = r.nextID
	r.activity = append(r.activity, log)
	if linen, ok := r.linens[log.LinenID]; ok {
		linen.UpdatedAt = log.RecordedAt
		r.linens[log.LinenID] = linen
	}
	return log.ID, nil
}

type memoryAuditor struct {
	logs []shared.AuditLog
}

func (a *memoryAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func (a *memoryAuditor) RecentByAction(ctx context.Context, action string, limit int) ([]shared.AuditLog, error) {
	out := []shared.AuditLog{}
	for i := len(a.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if a.logs[i].Action == action {
			out = append(out, a.logs[i])
		}
	}
	return out, nil
}

type stubReasons map[int64]string

func (s stubReasons) ReasonName(ctx context.Context, id int64) (string, error) {
	name, ok := s[id]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func newLinenService(repo *memoryLinenRepo, audit *memoryAuditor) *Service {
	svc := NewService(repo, audit, stubReasons{1: "ขาด", 2: "เปื้อนถาวร"})
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestRegisterAssignsAvailableStatus(t *testing.T) {
	repo := newMemoryLinenRepo()
	svc := newLinenService(repo, &memoryAuditor{})
	ctx := context.Background()

	linen, err := svc.Register(ctx, RegisterInput{RFIDTag: "TAG-001", ProductID: 11, HospitalID: 1})
	require.NoError(t, err)
	require.NotZero(t, linen.ID)
	require.Equal(t, StatusAvailable, linen.Status)
	require.True(t, linen.IsActive)

	_, err = svc.Register(ctx, RegisterInput{RFIDTag: "TAG-001", ProductID: 12, HospitalID: 1})
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Register(ctx, RegisterInput{RFIDTag: "  ", ProductID: 11, HospitalID: 1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDiscardStampsReasonAndAudits(t *testing.T) {
	repo := newMemoryLinenRepo()
	audit := &memoryAuditor{}
	svc := newLinenService(repo, audit)
	ctx := context.Background()

	linen, err := svc.Register(ctx, RegisterInput{RFIDTag: "TAG-001", ProductID: 11, HospitalID: 1})
	require.NoError(t, err)

	reporter := int64(9)
	require.NoError(t, svc.Discard(ctx, DiscardInput{RFIDTag: "TAG-001", DamageReasonID: 1, ReportedBy: &reporter}))

	stored := repo.linens[linen.ID]
	require.False(t, stored.IsActive)
	require.Equal(t, "ขาด", stored.Status)

	require.Len(t, audit.logs, 1)
	require.Equal(t, shared.ActionDiscardLinen, audit.logs[0].Action)
	require.Contains(t, audit.logs[0].Description, "TAG-001")
	require.Contains(t, audit.logs[0].Description, "ขาด")

	require.Len(t, repo.activity, 1)
	require.Equal(t, ActivityDamage, repo.activity[0].Activity)

	history, err := svc.DiscardHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "ขาด", history[0].Reason)
}

func TestDiscardFallsBackToDamaged(t *testing.T) {
	repo := newMemoryLinenRepo()
	svc := newLinenService(repo, &memoryAuditor{})
	ctx := context.Background()

	linen, err := svc.Register(ctx, RegisterInput{RFIDTag: "TAG-002", ProductID: 12, HospitalID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, DiscardInput{RFIDTag: "TAG-002", DamageReasonID: 99}))
	require.Equal(t, fallbackReason, repo.linens[linen.ID].Status)
}

func TestDiscardUnknownTag(t *testing.T) {
	svc := newLinenService(newMemoryLinenRepo(), &memoryAuditor{})
	err := svc.Discard(context.Background(), DiscardInput{RFIDTag: "GHOST", DamageReasonID: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAuditsBeforeRemoval(t *testing.T) {
	repo := newMemoryLinenRepo()
	audit := &memoryAuditor{}
	svc := newLinenService(repo, audit)
	ctx := context.Background()

	linen, err := svc.Register(ctx, RegisterInput{RFIDTag: "TAG-003", ProductID: 11, HospitalID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, linen.ID, nil))
	require.NotContains(t, repo.linens, linen.ID)
	require.Equal(t, []string{"audit:" + shared.ActionDeleteLinen, "delete"}, repo.events)

	require.ErrorIs(t, svc.Delete(ctx, linen.ID, nil), ErrNotFound)
}

func TestDeleteHistoryReadsAuditTrail(t *testing.T) {
	repo := newMemoryLinenRepo()
	audit := &memoryAuditor{}
	svc := newLinenService(repo, audit)
	ctx := context.Background()

	audit.logs = append(audit.logs, shared.AuditLog{
		ID:          1,
		Action:      shared.ActionDeleteLinen,
		Description: "ลบ TAG-004 : ผ้าปูเตียง",
		CreatedAt:   time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC),
	}, shared.AuditLog{
		ID:     2,
		Action: shared.ActionDiscardLinen,
	})

	records, err := svc.DeleteHistory(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "ลบ TAG-004 : ผ้าปูเตียง", records[0].Item)
	require.Equal(t, "31/05/24 18:00", records[0].Time)
}

func TestMonitorDerivesLocation(t *testing.T) {
	repo := newMemoryLinenRepo()
	svc := newLinenService(repo, &memoryAuditor{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{RFIDTag: "TAG-005", ProductID: 11, HospitalID: 1})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{RFIDTag: "TAG-006", ProductID: 12, HospitalID: 1})
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ctx, DiscardInput{RFIDTag: "TAG-006", DamageReasonID: 2}))

	entries, err := svc.Monitor(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byTag := map[string]MonitorEntry{}
	for _, entry := range entries {
		byTag[entry.RFIDTag] = entry
	}
	require.Equal(t, "คลังผ้าสะอาด (Clean Stock)", byTag["TAG-005"].Location)
	require.Equal(t, "ห้องคัดแยกชำรุด", byTag["TAG-006"].Location)
}

func TestRecordActivity(t *testing.T) {
	repo := newMemoryLinenRepo()
	svc := newLinenService(repo, &memoryAuditor{})
	ctx := context.Background()

	linen, err := svc.Register(ctx, RegisterInput{RFIDTag: "TAG-007", ProductID: 11, HospitalID: 1})
	require.NoError(t, err)

	log, err := svc.RecordActivity(ctx, ActivityInput{RFIDTag: "TAG-007", Activity: ActivityIssue})
	require.NoError(t, err)
	require.Equal(t, linen.ID, log.LinenID)
	require.Equal(t, ActivityIssue, log.Activity)

	_, err = svc.RecordActivity(ctx, ActivityInput{RFIDTag: "TAG-007", Activity: "WASH"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordActivity(ctx, ActivityInput{RFIDTag: "GHOST", Activity: ActivityReturn})
	require.ErrorIs(t, err, ErrNotFound)
}
