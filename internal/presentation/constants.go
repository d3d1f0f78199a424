package presentation

const (
	OwnerParam = "owner"
	RepoParam  = "repo"
	FileParam  = "*"
	HashParam  = "hash"
	ReasonTag  = "X-Reason"
	HashTag    = "X-Xet-Hash"
)
