package response

type TimeoutResponse struct {
	TimeoutSeconds int `json:"timeoutSeconds"`
}

type URLEncodeResponse struct {
	Value   string `json:"value"`
	Encoded string `json:"encoded"`
}

type DirectoryUsersResponse struct {
	Users []string `json:"users"`
}
