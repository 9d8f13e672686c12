package model

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLecturer Role = "lecturer"
	RoleStudent  Role = "student"
	RoleTO       Role = "to"
)

// User is the read-only view of an account. Credentials never leave the
// identity collections.
type User struct {
	ID        string `json:"id" bson:"_id"`
	Email     string `json:"email" bson:"email"`
	Role      Role   `json:"role" bson:"role"`
	Profile   string `json:"profile,omitempty" bson:"profile,omitempty"`
	RoleModel string `json:"roleModel,omitempty" bson:"roleModel,omitempty"`
}

type StudentProfile struct {
	ID         string `json:"id" bson:"_id"`
	RegNum     string `json:"reg_num" bson:"reg_num"`
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	Department string `json:"department" bson:"department"`
	Semester   int    `json:"semester" bson:"semester"`
	Batch      string `json:"batch" bson:"batch"`
}
