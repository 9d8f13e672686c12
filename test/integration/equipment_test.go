//go:build integration

package integration

import (
	"net/http"
	"testing"

	apperrors "unilab/pkg/errors"
	"unilab/pkg/model"
	"unilab/test/integration/testutil"
)

func createEquipment(t *testing.T, client *testutil.Client, equipment model.Equipment) model.Equipment {
	t.Helper()
	resp := client.As(t, testutil.OfficerID, model.RoleTO).POST(t, "/api/v1/equipment", equipment)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created model.Equipment
	resp.Data(t, &created)
	if created.ID == "" {
		t.Fatal("expected equipment id to be set")
	}
	return created
}

func TestBorrow_CapacityEnforced(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.NewEquipmentBuilder().WithQuantity(5).Build())
	student := client.As(t, testutil.StudentID, model.RoleStudent)
	path := "/api/v1/equipment/" + equipment.ID + "/borrow"

	resp := student.POST(t, path, testutil.BorrowRequest(3, "2025-04-01T09:00:00Z"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = student.POST(t, path, testutil.BorrowRequest(3, "2025-04-01T09:00:00Z"))
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, apperrors.CodeCapacityExceeded)

	resp = student.POST(t, path, testutil.BorrowRequest(2, "2025-04-01T09:00:00Z"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var updated model.Equipment
	resp.Data(t, &updated)
	if got := updated.BorrowedCount(""); got != 5 {
		t.Errorf("expected 5 outstanding items, got %d", got)
	}
}

func TestBorrow_ReturnFreesCapacity(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.NewEquipmentBuilder().WithQuantity(2).Build())
	lecturer := client.As(t, testutil.LecturerID, model.RoleLecturer)

	resp := lecturer.POST(t, "/api/v1/equipment/"+equipment.ID+"/borrow", testutil.BorrowRequest(2, "2025-04-01T09:00:00Z"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var borrowed model.Equipment
	resp.Data(t, &borrowed)
	borrowingID := borrowed.Borrowings[0].ID

	resp = lecturer.PUT(t, "/api/v1/equipment/"+equipment.ID+"/borrowings/"+borrowingID+"/return", nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var returned model.Equipment
	resp.Data(t, &returned)
	if returned.Borrowings[0].ReturnDate == nil {
		t.Fatal("expected return date to be stamped")
	}

	resp = lecturer.POST(t, "/api/v1/equipment/"+equipment.ID+"/borrow", testutil.BorrowRequest(2, "2025-04-03T09:00:00Z"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
}

func TestEquipment_KeeperOnlyWrites(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	resp := client.As(t, testutil.StudentID, model.RoleStudent).
		POST(t, "/api/v1/equipment", testutil.NewEquipmentBuilder().Build())
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
}
