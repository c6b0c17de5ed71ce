package social

type PostStats struct {
	Likes  int `json:"likes"`
	Shares int `json:"shares"`
}

type UserStats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

type FollowStatus struct {
	Following bool `json:"following"`
}
