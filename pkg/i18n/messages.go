package i18n

// Message keys. Error kinds reference these keys; text lives only in the tables below.
const (
	KeyAPIName = "api.name"

	KeyUserCreated     = "user.created"
	KeyUserCreateFail  = "user.create_failed"
	KeyUserEmailTaken  = "user.email_taken"
	KeyUserInvalid     = "user.invalid"
	KeyPasswordTooLong = "user.password_too_long"
	KeyUserNotFound    = "user.not_found"
	KeyUserListFailed  = "user.list_failed"
	KeyProfileFailed   = "user.profile_failed"
	KeyLoginSuccess    = "auth.login_success"
	KeyLoginFailed     = "auth.login_failed"
	KeyBadCredentials  = "auth.invalid_credentials"
	KeyRefreshSuccess  = "auth.refresh_success"
	KeyRefreshInvalid  = "auth.refresh_invalid"
	KeyLogoutSuccess   = "auth.logout_success"
	KeyLogoutAllOK     = "auth.logout_all_success"
	KeyLogoutFailed    = "auth.logout_failed"
	KeyTokenInvalid    = "auth.token_invalid"
	KeyForbidden       = "auth.forbidden"
	KeyDoctorWelcome   = "dashboard.doctor"
	KeyPatientWelcome  = "dashboard.patient"
	KeyValidation      = "error.validation"
	KeyInternal        = "error.internal"
	KeyInvalidPage     = "pagination.invalid_page"
	KeyInvalidLimit    = "pagination.invalid_limit"
	KeyRefreshNotFound = "refresh.not_found"
	KeyRefreshRevoked  = "refresh.revoked"
	KeyRefreshExpired  = "refresh.expired"
)

var english = map[string]string{
	KeyAPIName:         "Health Diary Monitoring API",
	KeyUserCreated:     "User created successfully",
	KeyUserCreateFail:  "Could not create user",
	KeyUserEmailTaken:  "Email is already in use",
	KeyUserInvalid:     "Invalid user data",
	KeyPasswordTooLong: "Password must be at most 72 bytes",
	KeyUserNotFound:    "User not found",
	KeyUserListFailed:  "Could not list users",
	KeyProfileFailed:   "Could not load profile",
	KeyLoginSuccess:    "Login successful",
	KeyLoginFailed:     "Could not log in",
	KeyBadCredentials:  "Invalid credentials",
	KeyRefreshSuccess:  "Token refreshed successfully",
	KeyRefreshInvalid:  "Invalid or expired refresh token",
	KeyLogoutSuccess:   "Logged out successfully",
	KeyLogoutAllOK:     "Logged out from all devices",
	KeyLogoutFailed:    "Could not log out",
	KeyTokenInvalid:    "Invalid or missing token",
	KeyForbidden:       "Access denied. You do not have permission to access this resource.",
	KeyDoctorWelcome:   "Welcome to the doctor dashboard",
	KeyPatientWelcome:  "Welcome to the patient dashboard",
	KeyValidation:      "Validation error",
	KeyInternal:        "Internal server error",
	KeyInvalidPage:     "Page must be a positive number within range",
	KeyInvalidLimit:    "Limit must be between 1 and 100",
	KeyRefreshNotFound: "Invalid refresh token",
	KeyRefreshRevoked:  "Refresh token was revoked",
	KeyRefreshExpired:  "Refresh token expired",
}

var portuguese = map[string]string{
	KeyAPIName:         "Health Diary Monitoring API",
	KeyUserCreated:     "Usuário criado com sucesso",
	KeyUserCreateFail:  "Erro ao criar usuário",
	KeyUserEmailTaken:  "Email já está em uso",
	KeyUserInvalid:     "Dados de usuário inválidos",
	KeyPasswordTooLong: "A senha deve ter no máximo 72 bytes",
	KeyUserNotFound:    "Usuário não encontrado",
	KeyUserListFailed:  "Erro ao buscar usuários",
	KeyProfileFailed:   "Erro ao buscar perfil",
	KeyLoginSuccess:    "Login realizado com sucesso",
	KeyLoginFailed:     "Erro ao realizar login",
	KeyBadCredentials:  "Credenciais inválidas",
	KeyRefreshSuccess:  "Token renovado com sucesso",
	KeyRefreshInvalid:  "Refresh token inválido ou expirado",
	KeyLogoutSuccess:   "Logout realizado com sucesso",
	KeyLogoutAllOK:     "Logout realizado em todos os dispositivos",
	KeyLogoutFailed:    "Erro ao fazer logout",
	KeyTokenInvalid:    "Token inválido ou ausente",
	KeyForbidden:       "Acesso negado. Você não tem permissão para acessar este recurso.",
	KeyDoctorWelcome:   "Bem-vindo ao dashboard do médico",
	KeyPatientWelcome:  "Bem-vindo ao dashboard do paciente",
	KeyValidation:      "Erro de validação",
	KeyInternal:        "Erro interno do servidor",
	KeyInvalidPage:     "A página deve ser um número positivo dentro do intervalo",
	KeyInvalidLimit:    "O limite deve estar entre 1 e 100",
	KeyRefreshNotFound: "Refresh token inválido",
	KeyRefreshRevoked:  "Refresh token foi revogado",
	KeyRefreshExpired:  "Refresh token expirado",
}
