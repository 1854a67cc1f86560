package registry

// BootstrapUser is the reserved account seeded on first run. It always
// exists and can never be deleted.
const BootstrapUser = "admin"

// userRecord is the persisted form of an account. Password holds the one-way
// hash; plaintext is never stored or logged.
type userRecord struct {
	Password   string   `json:"password"`
	IsAdmin    bool     `json:"isAdmin"`
	Containers []string `json:"containers"`
}

// state is the whole persisted document. Documents written before groups
// existed lack the groups key; Open backfills it.
type state struct {
	SessionSecret string                `json:"sessionSecret"`
	AdminMessage  string                `json:"adminMessage,omitempty"`
	Groups        map[string][]string   `json:"groups"`
	Users         map[string]userRecord `json:"users"`
}

// Account is the externally visible shape of a user record. The password
// hash never leaves the package.
type Account struct {
	Username   string   `json:"username"`
	IsAdmin    bool     `json:"isAdmin"`
	Containers []string `json:"containers"`
}

// Group is a named list of container names. Groups are presentation
// metadata only: they organize containers an identity can already see and
// grant no access by themselves.
type Group struct {
	Name       string   `json:"name"`
	Containers []string `json:"containers"`
}

func accountOf(username string, u userRecord) Account {
	containers := u.Containers
	if containers == nil {
		containers = []string{}
	}
	return Account{Username: username, IsAdmin: u.IsAdmin, Containers: containers}
}
