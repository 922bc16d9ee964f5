package notice

// Message ids, resolved through the translation files.
const (
	MsgNoProject          = "noProjectSelected"
	MsgNoTasks            = "noTasksFound"
	MsgFetchTasksFailed   = "fetchTasksFailed"
	MsgStatusUpdated      = "taskStatusUpdated"
	MsgNoPermission       = "noPermission"
	MsgStatusUpdateFailed = "taskStatusUpdateFailed"
	MsgInvalidTitle       = "invalidTitle"
	MsgTaskCreated        = "taskCreated"
	MsgTaskCreateFailed   = "taskCreateFailed"
	MsgUnexpectedError    = "unexpectedError"

	MsgLoginSucceeded     = "loginSucceeded"
	MsgInvalidCredentials = "invalidCredentials"
	MsgLoginNoToken       = "loginNoToken"
	MsgLoggedOut          = "loggedOut"
	MsgRegistered         = "registered"
	MsgSessionExpired     = "sessionExpired"

	MsgProjectCreated       = "projectCreated"
	MsgProjectFetchFailed   = "projectFetchFailed"
	MsgUserAddedToProject   = "userAddedToProject"
	MsgUserAlreadyInProject = "userAlreadyInProject"
	MsgAddUserFailed        = "addUserFailed"
	MsgFetchUsersFailed     = "fetchUsersFailed"

	MsgUserAssigned        = "userAssigned"
	MsgUserAlreadyAssigned = "userAlreadyAssigned"
	MsgAssignFailed        = "assignFailed"
	MsgUserUnassigned      = "userUnassigned"
	MsgUnassignFailed      = "unassignFailed"
	MsgCommentsFailed      = "commentsFailed"
	MsgCommentEmpty        = "commentEmpty"
	MsgCommentPostFailed   = "commentPostFailed"
	MsgCommentUpdated      = "commentUpdated"
	MsgCommentUpdateFail   = "commentUpdateFailed"
	MsgCommentDeleteFail   = "commentDeleteFailed"
	MsgDescriptionUpdated  = "descriptionUpdated"
	MsgDescriptionFailed   = "descriptionUpdateFailed"
	MsgPriorityUpdated     = "priorityUpdated"
	MsgPriorityFailed      = "priorityUpdateFailed"
	MsgEstimateUpdated     = "estimateUpdated"
	MsgEstimateFailed      = "estimateUpdateFailed"
)
