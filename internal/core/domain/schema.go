package domain

type OptionType int

const (
	OptionSubcommand OptionType = iota + 1
	OptionString
	OptionInteger
	OptionBoolean
	OptionUser
)

type OptionSchema struct {
	Type        OptionType
	Name        string
	Description string
	Required    bool
	MinLength   *int
	MaxLength   int
	MinValue    *float64
	MaxValue    float64
	Options     []OptionSchema
}

// CommandSchema is the declarative part of a command, convertible to the
// platform registration payload.
type CommandSchema struct {
	Name                     string
	Description              string
	Options                  []OptionSchema
	DefaultMemberPermissions *Permission
}

func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

func PermissionPtr(p Permission) *Permission { return &p }
