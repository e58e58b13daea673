package i18n

var catalog = map[string]map[string]string{
	"en": {
		"common.internal_error":  "Internal server error",
		"common.invalid_request": "Invalid request body",
		"common.invalid_id":      "Invalid id parameter",
		"common.forgot_password": "If the email exists, a reset code has been sent",

		"auth.email_not_registered":   "Email is not registered",
		"auth.password_incorrect":     "Password is incorrect",
		"auth.token_not_found":        "Access token not found",
		"auth.invalid_token":          "Invalid or expired token",
		"auth.user_not_found":         "User for this token no longer exists",
		"auth.refresh_token_required": "Refresh token is required",
		"auth.refresh_token_invalid":  "Refresh token is invalid or expired",
		"auth.otp_invalid":            "Invalid email or OTP code",
		"auth.otp_expired":            "OTP code has expired. Please request a new one.",
		"auth.otp_max_attempts":       "Maximum attempts (%{max}) exceeded. Please request a new OTP code.",

		"user.not_found":            "User not found",
		"user.not_found_with_id":    "User with id %{id} not found",
		"user.email_required":       "Email is required",
		"user.email_invalid":        "Invalid email format",
		"user.email_already_in_use": "Email is already in use",
		"user.password_required":    "Password is required",
		"user.cannot_delete_self":   "You cannot delete your own account",
	},
	"vi": {
		"common.internal_error":  "Lỗi máy chủ nội bộ",
		"common.invalid_request": "Nội dung yêu cầu không hợp lệ",
		"common.invalid_id":      "Tham số id không hợp lệ",
		"common.forgot_password": "Nếu email tồn tại, mã đặt lại đã được gửi",

		"auth.email_not_registered":   "Email chưa được đăng ký",
		"auth.password_incorrect":     "Mật khẩu không đúng",
		"auth.token_not_found":        "Không tìm thấy access token",
		"auth.invalid_token":          "Token không hợp lệ hoặc đã hết hạn",
		"auth.user_not_found":         "Người dùng của token này không còn tồn tại",
		"auth.refresh_token_required": "Cần có refresh token",
		"auth.refresh_token_invalid":  "Refresh token không hợp lệ hoặc đã hết hạn",
		"auth.otp_invalid":            "Email hoặc mã OTP không hợp lệ",
		"auth.otp_expired":            "Mã OTP đã hết hạn. Vui lòng yêu cầu mã mới.",
		"auth.otp_max_attempts":       "Đã vượt quá số lần thử tối đa (%{max}). Vui lòng yêu cầu mã OTP mới.",

		"user.not_found":            "Không tìm thấy người dùng",
		"user.not_found_with_id":    "Không tìm thấy người dùng với id %{id}",
		"user.email_required":       "Email là bắt buộc",
		"user.email_invalid":        "Định dạng email không hợp lệ",
		"user.email_already_in_use": "Email đã được sử dụng",
		"user.password_required":    "Mật khẩu là bắt buộc",
		"user.cannot_delete_self":   "Bạn không thể xóa tài khoản của chính mình",
	},
}
