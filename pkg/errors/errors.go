package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition is a business error code with its default message.
type Definition struct {
	Code    string
	Message string
}

// WithMessage keeps the code and replaces the message.
func (d Definition) WithMessage(msg string) Definition {
	d.Message = msg
	return d
}

// Common errors.
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	NotFound        = Definition{Code: "NOT_FOUND", Message: "Not found"}
	Forbidden       = Definition{Code: "FORBIDDEN", Message: "You do not have permission to perform this action"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	Internal        = Definition{Code: "INTERNAL_ERROR", Message: "Internal error"}
)

// Auth and user errors.
var (
	Unauthorized        = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidCredentials  = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password"}
	InvalidRefreshToken = Definition{Code: "INVALID_REFRESH_TOKEN", Message: "Refresh token invalid or expired"}
	UserInactive        = Definition{Code: "USER_INACTIVE", Message: "User account is disabled"}
	UserNotFound        = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	InvalidUserID       = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID"}
	UploadTooLarge      = Definition{Code: "UPLOAD_TOO_LARGE", Message: "Uploaded file is too large"}
	UploadInvalidType   = Definition{Code: "UPLOAD_INVALID_TYPE", Message: "Unsupported image type"}
)

// Section and form errors.
var (
	FormNotFound    = Definition{Code: "FORM_NOT_FOUND", Message: "Form not found"}
	SectionNotFound = Definition{Code: "SECTION_NOT_FOUND", Message: "Section not found"}
)

// Notification errors.
var (
	NotificationNotFound          = Definition{Code: "NOTIFICATION_NOT_FOUND", Message: "Notification not found"}
	NotificationImportanceInvalid = Definition{Code: "NOTIFICATION_IMPORTANCE_INVALID", Message: "Importance must be normal or important"}
)

// Complaint errors.
var (
	ComplaintNotFound          = Definition{Code: "COMPLAINT_NOT_FOUND", Message: "Complaint not found"}
	ComplaintRecipientInvalid  = Definition{Code: "COMPLAINT_RECIPIENT_INVALID", Message: "Recipient type must be hr or manager"}
	ComplaintResponseRequired  = Definition{Code: "COMPLAINT_RESPONSE_REQUIRED", Message: "Response text is required"}
	ComplaintRecipientMismatch = Definition{Code: "COMPLAINT_RECIPIENT_MISMATCH", Message: "Complaint is not addressed to your role"}
)

// Survey errors.
var (
	SurveyNotFound           = Definition{Code: "SURVEY_NOT_FOUND", Message: "Survey not found"}
	SurveyStatusInvalid      = Definition{Code: "SURVEY_STATUS_INVALID", Message: "Status must be draft, published or archived"}
	SurveyNotPublished       = Definition{Code: "SURVEY_NOT_PUBLISHED", Message: "Survey is not published"}
	SurveyAlreadySubmitted   = Definition{Code: "SURVEY_ALREADY_SUBMITTED", Message: "You have already submitted this survey"}
	SurveyQuestionNoOptions  = Definition{Code: "SURVEY_QUESTION_NO_OPTIONS", Message: "Each question must have at least one option"}
	SurveyQuestionForeign    = Definition{Code: "SURVEY_QUESTION_FOREIGN", Message: "Question does not belong to this survey"}
	SurveyQuestionDuplicated = Definition{Code: "SURVEY_QUESTION_DUPLICATED", Message: "Question answered more than once"}
	SurveyOptionMismatch     = Definition{Code: "SURVEY_OPTION_MISMATCH", Message: "Option does not belong to the question"}
	SurveyRequiredUnanswered = Definition{Code: "SURVEY_REQUIRED_UNANSWERED", Message: "All required questions must be answered"}
)

// Task errors.
var (
	TaskNotFound         = Definition{Code: "TASK_NOT_FOUND", Message: "Task not found"}
	TaskClosed           = Definition{Code: "TASK_CLOSED", Message: "Task is already closed"}
	TaskNoPendingPhase   = Definition{Code: "TASK_NO_PENDING_PHASE", Message: "No pending phases"}
	TaskResultInvalid    = Definition{Code: "TASK_RESULT_INVALID", Message: "Result must be success or failed"}
	TaskRecipientUnknown = Definition{Code: "TASK_RECIPIENT_UNKNOWN", Message: "Recipient user does not exist"}
	TaskCommentEmpty     = Definition{Code: "TASK_COMMENT_EMPTY", Message: "Comment text is required"}
)

// Points and honor board errors.
var (
	PointsDeltaInvalid = Definition{Code: "POINTS_DELTA_INVALID", Message: "Delta must be a non-zero integer"}
	HonorScopeInvalid  = Definition{Code: "HONOR_SCOPE_INVALID", Message: "Scope must be month, year or both"}
)

// Lookup resolves a code to its definition.
var Lookup = map[string]Definition{
	InvalidRequest.Code:  InvalidRequest,
	NotFound.Code:        NotFound,
	Forbidden.Code:       Forbidden,
	TooManyRequests.Code: TooManyRequests,
	Internal.Code:        Internal,

	Unauthorized.Code:        Unauthorized,
	InvalidCredentials.Code:  InvalidCredentials,
	InvalidRefreshToken.Code: InvalidRefreshToken,
	UserInactive.Code:        UserInactive,
	UserNotFound.Code:        UserNotFound,
	InvalidUserID.Code:       InvalidUserID,
	UploadTooLarge.Code:      UploadTooLarge,
	UploadInvalidType.Code:   UploadInvalidType,

	FormNotFound.Code:    FormNotFound,
	SectionNotFound.Code: SectionNotFound,

	NotificationNotFound.Code:          NotificationNotFound,
	NotificationImportanceInvalid.Code: NotificationImportanceInvalid,

	ComplaintNotFound.Code:          ComplaintNotFound,
	ComplaintRecipientInvalid.Code:  ComplaintRecipientInvalid,
	ComplaintResponseRequired.Code:  ComplaintResponseRequired,
	ComplaintRecipientMismatch.Code: ComplaintRecipientMismatch,

	SurveyNotFound.Code:           SurveyNotFound,
	SurveyStatusInvalid.Code:      SurveyStatusInvalid,
	SurveyNotPublished.Code:       SurveyNotPublished,
	SurveyAlreadySubmitted.Code:   SurveyAlreadySubmitted,
	SurveyQuestionNoOptions.Code:  SurveyQuestionNoOptions,
	SurveyQuestionForeign.Code:    SurveyQuestionForeign,
	SurveyQuestionDuplicated.Code: SurveyQuestionDuplicated,
	SurveyOptionMismatch.Code:     SurveyOptionMismatch,
	SurveyRequiredUnanswered.Code: SurveyRequiredUnanswered,

	TaskNotFound.Code:         TaskNotFound,
	TaskClosed.Code:           TaskClosed,
	TaskNoPendingPhase.Code:   TaskNoPendingPhase,
	TaskResultInvalid.Code:    TaskResultInvalid,
	TaskRecipientUnknown.Code: TaskRecipientUnknown,
	TaskCommentEmpty.Code:     TaskCommentEmpty,

	PointsDeltaInvalid.Code: PointsDeltaInvalid,
	HonorScopeInvalid.Code:  HonorScopeInvalid,
}

// Get returns the definition for code, or Internal when the code is unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Internal
}
