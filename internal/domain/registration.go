package domain

// Product is the product code of a registration
type Product string

// ProductMaster is the graduate-track product
const ProductMaster Product = "MASTER"

// Program is a study program selectable at registration
type Program string

const (
	ProgramAutonomousSystems          Program = "AUTONOMOUS_SYSTEMS"
	ProgramDistributedSoftwareSystems Program = "DISTRIBUTED_SOFTWARE_SYSTEMS"
	ProgramGeneral                    Program = "GENERAL"
	ProgramInternetAndWebbasedSystems Program = "INTERNET_AND_WEBBASED_SYSTEMS"
	ProgramITSecurity                 Program = "IT_SECURITY"
	ProgramVisualComputing            Program = "VISUAL_COMPUTING"
)

// Programs lists all programs in prompt order; the n-th entry is selected by digit n+1.
var Programs = []Program{
	ProgramAutonomousSystems,
	ProgramDistributedSoftwareSystems,
	ProgramGeneral,
	ProgramInternetAndWebbasedSystems,
	ProgramITSecurity,
	ProgramVisualComputing,
}

// Order is a registration placed at signup
type Order struct {
	Username string
	Product  Product
	Programs []Program
}

// GraduateTrack reports whether the order is for the graduate-track product
func (o Order) GraduateTrack() bool {
	return o.Product == ProductMaster
}

// RoleID is an opaque platform role identifier
type RoleID string
