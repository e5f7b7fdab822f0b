package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tipjar-backend/models"
)

func TestCreateTip_ByQrKey(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "tip-owner-a@example.com", "owner")
	restaurant := seedRestaurant(db, "Tip Cafe", owner.ID)
	staff := seedStaff(db, restaurant.ID, "Tippee", nil)
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{
		"staffKey":  staff.QrKey,
		"amount":    150.50,
		"payerName": "Guest",
		"message":   "Great service",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	// Major units are converted to integer paise at the boundary.
	if resp["amountCents"] != float64(15050) {
		t.Errorf("expected amountCents 15050, got %v", resp["amountCents"])
	}
	if resp["currency"] != "INR" {
		t.Errorf("expected INR, got %v", resp["currency"])
	}
	if resp["status"] != "succeeded" {
		t.Errorf("expected succeeded, got %v", resp["status"])
	}
	if resp["source"] != "qr" {
		t.Errorf("expected default qr source, got %v", resp["source"])
	}
	if resp["staffDisplayName"] != "Tippee" {
		t.Errorf("expected staffDisplayName, got %v", resp["staffDisplayName"])
	}
}

func TestCreateTip_ByStaffID(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "tip-owner-b@example.com", "owner")
	restaurant := seedRestaurant(db, "Tip Cafe 2", owner.ID)
	staff := seedStaff(db, restaurant.ID, "Direct", nil)
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{
		"staffId": staff.ID.String(),
		"amount":  50,
		"source":  "link",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["source"] != "link" {
		t.Errorf("expected link source, got %v", parseResponse(w)["source"])
	}
}

func TestCreateTip_CustomCurrency(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "tip-owner-fx@example.com", "owner")
	restaurant := seedRestaurant(db, "Tip Cafe FX", owner.ID)
	staff := seedStaff(db, restaurant.ID, "Abroad", nil)
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{
		"staffKey": staff.QrKey,
		"amount":   20,
		"currency": "usd",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["currency"] != "USD" {
		t.Errorf("expected USD, got %v", parseResponse(w)["currency"])
	}

	var stored models.Tip
	if err := db.Where("staff_member_id = ?", staff.ID).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Currency != "USD" {
		t.Errorf("expected stored currency USD, got %s", stored.Currency)
	}
}

func TestCreateTip_MissingIdentifier(t *testing.T) {
	db := freshDB()
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{"amount": 50}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "MISSING_STAFF_IDENTIFIER" {
		t.Errorf("expected MISSING_STAFF_IDENTIFIER, got %v", parseResponse(w)["code"])
	}
}

func TestCreateTip_AmountValidation(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "tip-owner-c@example.com", "owner")
	restaurant := seedRestaurant(db, "Tip Cafe 3", owner.ID)
	staff := seedStaff(db, restaurant.ID, "Bounds", nil)
	r := setupTipRouter(db)

	cases := []struct {
		name   string
		amount interface{}
		code   string
	}{
		{"missing", nil, "INVALID_AMOUNT"},
		{"zero", 0, "INVALID_AMOUNT"},
		{"negative", -5, "INVALID_AMOUNT"},
		{"below minimum", 0.5, "AMOUNT_OUT_OF_RANGE"},
		{"above maximum", 100001, "AMOUNT_OUT_OF_RANGE"},
	}

	for _, tc := range cases {
		body := map[string]interface{}{"staffKey": staff.QrKey}
		if tc.amount != nil {
			body["amount"] = tc.amount
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest("POST", "/api/tips", body))

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, w.Code)
			continue
		}
		if parseResponse(w)["code"] != tc.code {
			t.Errorf("%s: expected %s, got %v", tc.name, tc.code, parseResponse(w)["code"])
		}
	}

	// Out-of-range amounts are rejected, never clamped.
	var count int64
	db.Model(&models.Tip{}).Count(&count)
	if count != 0 {
		t.Errorf("no tips may be stored from rejected requests, found %d", count)
	}
}

func TestCreateTip_BoundaryAmountsAccepted(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "tip-owner-d@example.com", "owner")
	restaurant := seedRestaurant(db, "Tip Cafe 4", owner.ID)
	staff := seedStaff(db, restaurant.ID, "Edges", nil)
	r := setupTipRouter(db)

	for _, amount := range []float64{1, 100000} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{
			"staffKey": staff.QrKey,
			"amount":   amount,
		}))
		if w.Code != http.StatusCreated {
			t.Errorf("amount %v: expected 201, got %d: %s", amount, w.Code, w.Body.String())
		}
	}
}

func TestCreateTip_InactiveStaff(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "tip-owner-e@example.com", "owner")
	restaurant := seedRestaurant(db, "Tip Cafe 5", owner.ID)
	staff := seedStaff(db, restaurant.ID, "Paused", nil)
	db.Model(&staff).Update("status", "inactive")
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{
		"staffKey": staff.QrKey,
		"amount":   100,
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["code"] != "STAFF_INACTIVE" {
		t.Errorf("expected STAFF_INACTIVE, got %v", parseResponse(w)["code"])
	}
}

func TestCreateTip_UnknownStaff(t *testing.T) {
	db := freshDB()
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{
		"staffKey": "no-such-key",
		"amount":   100,
	}))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "STAFF_NOT_FOUND" {
		t.Errorf("expected STAFF_NOT_FOUND, got %v", parseResponse(w)["code"])
	}
}

func TestCreateTip_InvalidSource(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "tip-owner-f@example.com", "owner")
	restaurant := seedRestaurant(db, "Tip Cafe 6", owner.ID)
	staff := seedStaff(db, restaurant.ID, "Sourced", nil)
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/tips", map[string]interface{}{
		"staffKey": staff.QrKey,
		"amount":   100,
		"source":   "cash",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "INVALID_SOURCE" {
		t.Errorf("expected INVALID_SOURCE, got %v", parseResponse(w)["code"])
	}
}

func TestListTips_RequiresAuth(t *testing.T) {
	db := freshDB()
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("GET", "/api/tips", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestListTips_WorkerDenied(t *testing.T) {
	db := freshDB()
	_, workerToken := seedTestUser(db, "tip-worker-a@example.com", "worker")
	r := setupTipRouter(db)

	// Workers use the per-staff tips endpoint instead.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/tips", nil, workerToken))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestListTips_OwnerScopedWithJoinedNames(t *testing.T) {
	db := freshDB()
	owner, ownerToken := seedTestUser(db, "tip-owner-g@example.com", "owner")
	other, _ := seedTestUser(db, "tip-owner-h@example.com", "owner")
	mine := seedRestaurant(db, "Visible", owner.ID)
	theirs := seedRestaurant(db, "Hidden", other.ID)
	myStaff := seedStaff(db, mine.ID, "Mine", nil)
	theirStaff := seedStaff(db, theirs.ID, "Theirs", nil)
	seedTip(db, myStaff.ID, 3000)
	seedTip(db, theirStaff.ID, 9000)
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/tips", nil, ownerToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := dataArray(w)
	if len(data) != 1 {
		t.Fatalf("expected only tips in owned restaurants, got %d rows", len(data))
	}
	row := data[0].(map[string]interface{})
	if row["amountCents"] != float64(3000) {
		t.Errorf("expected 3000, got %v", row["amountCents"])
	}
	if row["staffDisplayName"] != "Mine" || row["restaurantName"] != "Visible" {
		t.Errorf("expected joined names, got %v / %v", row["staffDisplayName"], row["restaurantName"])
	}
}

func TestListTips_StaffFilter(t *testing.T) {
	db := freshDB()
	_, adminToken := seedTestUser(db, "tip-admin-a@example.com", "admin")
	owner, _ := seedTestUser(db, "tip-owner-i@example.com", "owner")
	restaurant := seedRestaurant(db, "Filters", owner.ID)
	a := seedStaff(db, restaurant.ID, "A", nil)
	b := seedStaff(db, restaurant.ID, "B", nil)
	seedTip(db, a.ID, 1000)
	seedTip(db, b.ID, 2000)
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/tips?staffId="+a.ID.String(), nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp["total"] != float64(1) {
		t.Errorf("expected total 1, got %v", resp["total"])
	}
}

func TestListTips_InvalidStaffFilter(t *testing.T) {
	db := freshDB()
	_, adminToken := seedTestUser(db, "tip-admin-b@example.com", "admin")
	r := setupTipRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/tips?staffId=not-a-uuid", nil, adminToken))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if parseResponse(w)["code"] != "INVALID_STAFF_ID" {
		t.Errorf("expected INVALID_STAFF_ID, got %v", parseResponse(w)["code"])
	}
}
