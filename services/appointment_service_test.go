package services

import (
	"context"
	"errors"
	"testing"

	"salon-backend/models"
	"salon-backend/mq"
	"salon-backend/testutil"
	"salon-backend/utils"

	"gorm.io/gorm"
)

func newAppointmentEnv(t *testing.T) (*AppointmentService, *gorm.DB, testutil.Fixture, *mq.Recorder) {
	t.Helper()
	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)
	events := &mq.Recorder{}
	return NewAppointmentService(db, events), db, fx, events
}

func book(t *testing.T, svc *AppointmentService, fx testutil.Fixture, date, clock string) *AppointmentCreated {
	t.Helper()
	created, err := svc.Create(context.Background(), CreateAppointmentInput{
		UserID: fx.Client.ID, TreatmentID: fx.Treatment.ID, Date: date, Time: clock,
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return created
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCreateAppointment(t *testing.T) {
	svc, db, fx, events := newAppointmentEnv(t)

	created := book(t, svc, fx, "2024-05-01", "10:00")
	if created.AppointmentID == 0 || created.UserAppointmentID == 0 {
		t.Fatalf("ids not populated: %+v", created)
	}
	if created.Status != models.StatusPending || created.Legacy != nil {
		t.Fatalf("new booking should be pending with null estadocita: %+v", created)
	}

	var appt models.Appointment
	if err := db.First(&appt, created.AppointmentID).Error; err != nil {
		t.Fatal(err)
	}
	if appt.RequestedDate != "2024-05-01" || appt.RequestedTime != "10:00" || appt.TreatmentID != fx.Treatment.ID {
		t.Fatalf("unexpected appointment row %+v", appt)
	}
	var assoc models.UserAppointment
	if err := db.First(&assoc, created.UserAppointmentID).Error; err != nil {
		t.Fatal(err)
	}
	if assoc.AppointmentID != appt.ID || assoc.UserID != fx.Client.ID || assoc.Status != models.StatusPending {
		t.Fatalf("unexpected association row %+v", assoc)
	}
	if keys := events.Keys(); len(keys) != 1 || keys[0] != mq.AppointmentRequested {
		t.Fatalf("events = %v", keys)
	}
}

func TestCreateAppointmentRejectsBadInput(t *testing.T) {
	svc, db, fx, _ := newAppointmentEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateAppointmentInput
		kind utils.ErrorKind
	}{
		{"missing user", CreateAppointmentInput{TreatmentID: fx.Treatment.ID, Date: "2024-05-01", Time: "10:00"}, utils.KindValidation},
		{"missing time", CreateAppointmentInput{UserID: fx.Client.ID, TreatmentID: fx.Treatment.ID, Date: "2024-05-01"}, utils.KindValidation},
		{"bad date", CreateAppointmentInput{UserID: fx.Client.ID, TreatmentID: fx.Treatment.ID, Date: "01/05/2024", Time: "10:00"}, utils.KindValidation},
		{"bad time", CreateAppointmentInput{UserID: fx.Client.ID, TreatmentID: fx.Treatment.ID, Date: "2024-05-01", Time: "25:00"}, utils.KindValidation},
		{"unknown user", CreateAppointmentInput{UserID: 999, TreatmentID: fx.Treatment.ID, Date: "2024-05-01", Time: "10:00"}, utils.KindNotFound},
		{"unknown treatment", CreateAppointmentInput{UserID: fx.Client.ID, TreatmentID: 999, Date: "2024-05-01", Time: "10:00"}, utils.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			if utils.KindOf(err) != tc.kind {
				t.Fatalf("got %v (kind %d), want kind %d", err, utils.KindOf(err), tc.kind)
			}
		})
	}
	if n := countRows(t, db, &models.Appointment{}); n != 0 {
		t.Fatalf("%d appointments written by rejected requests", n)
	}
}

func TestCreateAppointmentRollsBackWhenAssociationFails(t *testing.T) {
	svc, db, fx, events := newAppointmentEnv(t)

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_association", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "user_appointments" {
			tx.AddError(errors.New("forced failure"))
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Create(context.Background(), CreateAppointmentInput{
		UserID: fx.Client.ID, TreatmentID: fx.Treatment.ID, Date: "2024-05-01", Time: "10:00",
	})
	if utils.KindOf(err) != utils.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if n := countRows(t, db, &models.Appointment{}); n != 0 {
		t.Fatalf("orphan appointment left behind: %d rows", n)
	}
	if n := countRows(t, db, &models.UserAppointment{}); n != 0 {
		t.Fatalf("association rows: %d", n)
	}
	if len(events.Keys()) != 0 {
		t.Fatalf("no event expected for a rolled back booking, got %v", events.Keys())
	}
}

func TestStatusTransitionsAreReversible(t *testing.T) {
	svc, db, fx, events := newAppointmentEnv(t)
	ctx := context.Background()
	created := book(t, svc, fx, "2024-05-01", "10:00")

	steps := []struct {
		apply func(context.Context, uint) (*models.UserAppointment, error)
		want  models.AppointmentStatus
	}{
		{svc.Approve, models.StatusApproved},
		{svc.Reject, models.StatusRejected},
		{svc.Approve, models.StatusApproved},
	}
	for i, step := range steps {
		ua, err := step.apply(ctx, created.UserAppointmentID)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if ua.Status != step.want {
			t.Fatalf("step %d: returned status %q, want %q", i, ua.Status, step.want)
		}
	}

	var stored models.UserAppointment
	if err := db.First(&stored, created.UserAppointmentID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.StatusApproved {
		t.Fatalf("final status %q", stored.Status)
	}
	want := []string{mq.AppointmentRequested, mq.AppointmentApproved, mq.AppointmentRejected, mq.AppointmentApproved}
	got := events.Keys()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestTransitionsOnUnknownBooking(t *testing.T) {
	svc, _, _, _ := newAppointmentEnv(t)
	ctx := context.Background()

	if _, err := svc.Approve(ctx, 404); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Reject(ctx, 404); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.SetStatus(ctx, 404, models.StatusApproved); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("set status: %v", err)
	}
	if _, err := svc.SetStatus(ctx, 1, models.AppointmentStatus("cancelled")); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("invalid status: %v", err)
	}
}

func TestSetStatusIsKeyedByAppointment(t *testing.T) {
	svc, _, fx, _ := newAppointmentEnv(t)
	ctx := context.Background()
	book(t, svc, fx, "2024-05-01", "09:00")
	second := book(t, svc, fx, "2024-05-02", "09:00")

	ua, err := svc.SetStatus(ctx, second.AppointmentID, models.StatusRejected)
	if err != nil {
		t.Fatal(err)
	}
	if ua.ID != second.UserAppointmentID || ua.Status != models.StatusRejected {
		t.Fatalf("updated the wrong row: %+v", ua)
	}
}

func TestListPendingAndCalendar(t *testing.T) {
	svc, db, fx, _ := newAppointmentEnv(t)
	ctx := context.Background()

	pending := book(t, svc, fx, "2024-05-03", "11:00")
	rejected := book(t, svc, fx, "2024-05-01", "09:00")
	early := book(t, svc, fx, "2024-05-01", "15:00")
	late := book(t, svc, fx, "2024-05-10", "08:30")

	if _, err := svc.Reject(ctx, rejected.UserAppointmentID); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*AppointmentCreated{early, late} {
		if _, err := svc.Approve(ctx, c.UserAppointmentID); err != nil {
			t.Fatal(err)
		}
	}
	invoice := models.Invoice{UserAppointmentID: late.UserAppointmentID, CurrencyID: fx.Currency.ID, Total: 15000}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].UserAppointmentID != rejected.UserAppointmentID || list[1].UserAppointmentID != pending.UserAppointmentID {
		t.Fatalf("pending list = %+v", list)
	}
	if list[0].TreatmentName != fx.Treatment.Name || list[0].FirstName != fx.Client.FirstName {
		t.Fatalf("pending list is missing joined columns: %+v", list[0])
	}

	cal, err := svc.Calendar(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cal) != 2 || cal[0].UserAppointmentID != early.UserAppointmentID {
		t.Fatalf("calendar = %+v", cal)
	}
	if cal[0].HasInvoice || !cal[1].HasInvoice || cal[1].InvoiceID == nil || *cal[1].InvoiceID != invoice.ID {
		t.Fatalf("invoice flags wrong: %+v", cal)
	}

	ranges := []struct {
		from, to string
		want     int
	}{
		{"2024-05-01", "2024-05-10", 2},
		{"2024-05-02", "", 1},
		{"", "2024-05-01", 1},
		{"2024-05-11", "", 0},
	}
	for _, r := range ranges {
		got, err := svc.Calendar(ctx, r.from, r.to)
		if err != nil {
			t.Fatalf("%s..%s: %v", r.from, r.to, err)
		}
		if len(got) != r.want {
			t.Fatalf("%s..%s: %d entries, want %d", r.from, r.to, len(got), r.want)
		}
	}
	if _, err := svc.Calendar(ctx, "mayo", ""); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("bad range bound: %v", err)
	}
	if _, err := svc.Calendar(ctx, "2024-05-10", "2024-05-01"); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("inverted range: %v", err)
	}
}

func TestListByUserAndStatusFilter(t *testing.T) {
	svc, _, fx, _ := newAppointmentEnv(t)
	ctx := context.Background()
	first := book(t, svc, fx, "2024-05-01", "10:00")
	book(t, svc, fx, "2024-06-01", "10:00")
	if _, err := svc.Approve(ctx, first.UserAppointmentID); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.ListByUser(ctx, fx.Client.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 || mine[0].RequestedDate != "2024-06-01" {
		t.Fatalf("expected newest first, got %+v", mine)
	}
	if mine[0].CategoryName == nil || *mine[0].CategoryName != fx.Category.Name {
		t.Fatalf("category missing: %+v", mine[0])
	}

	none, err := svc.ListByUser(ctx, fx.Admin.ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("admin has no bookings: %v %v", none, err)
	}

	approved := models.StatusApproved
	only, err := svc.List(ctx, &approved)
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 || only[0].UserAppointmentID != first.UserAppointmentID {
		t.Fatalf("status filter = %+v", only)
	}
}
