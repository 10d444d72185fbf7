package config

// ServiceAccount holds the fields of the Firebase service account key we log at startup.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// AdminTopic is the FCM topic every admin device subscribes to.
const AdminTopic = "admins"

// FirebaseEnabled reports whether push delivery should be initialised.
func FirebaseEnabled() bool {
	return AppConfig.FirebaseCredentialsPath != ""
}
