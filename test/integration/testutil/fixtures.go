//go:build integration

package testutil

import (
	"unilab/pkg/model"
)

const (
	AdminID    = "65f0000000000000000000a1"
	OfficerID  = "65f0000000000000000000b1"
	LecturerID = "65f0000000000000000000c1"
	StudentID  = "65f0000000000000000000d1"
)

type LabBuilder struct {
	lab model.Lab
}

func NewLabBuilder() *LabBuilder {
	return &LabBuilder{
		lab: model.Lab{
			Name:        "Physics Lab",
			Type:        "Physics",
			MaxCapacity: 40,
			AllocatedTO: OfficerID,
		},
	}
}

func (b *LabBuilder) WithName(name string) *LabBuilder {
	b.lab.Name = name
	return b
}

func (b *LabBuilder) WithCapacity(capacity int) *LabBuilder {
	b.lab.MaxCapacity = capacity
	return b
}

func (b *LabBuilder) Build() model.Lab {
	return b.lab
}

type EquipmentBuilder struct {
	equipment model.Equipment
}

func NewEquipmentBuilder() *EquipmentBuilder {
	return &EquipmentBuilder{
		equipment: model.Equipment{
			ItemNum:  "OSC-001",
			Name:     "Oscilloscope",
			Quantity: 5,
		},
	}
}

func (b *EquipmentBuilder) WithItemNum(itemNum string) *EquipmentBuilder {
	b.equipment.ItemNum = itemNum
	return b
}

func (b *EquipmentBuilder) WithQuantity(quantity int) *EquipmentBuilder {
	b.equipment.Quantity = quantity
	return b
}

func (b *EquipmentBuilder) Build() model.Equipment {
	return b.equipment
}

func BookingRequest(date, from, to string) model.BookingRequest {
	return model.BookingRequest{
		Department: "Physics",
		Batch:      "2023",
		Course:     "PHY101",
		Reason:     "Practical session",
		Date:       date,
		Duration:   model.TimeSlot{From: from, To: to},
	}
}

func BorrowRequest(items int, borrowDate string) model.BorrowRequest {
	return model.BorrowRequest{
		NumOfItems: items,
		BorrowDate: borrowDate,
		Purpose:    "Lab practical",
	}
}

// Officer is the technical officer every notification test expects to hear
// about new requests.
func Officer() model.User {
	return model.User{ID: OfficerID, Email: "to@uni.test", Role: model.RoleTO}
}
