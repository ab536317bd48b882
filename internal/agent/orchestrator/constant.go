package orchestrator

// Log prefixes
const (
	LogPrefixRun        = "internal.agent.orchestrator.Run"
	LogPrefixWorker     = "internal.agent.orchestrator.Worker"
	LogPrefixSupervisor = "internal.agent.orchestrator.Supervisor"
)

// Defaults
const (
	DefaultMaxSteps      = 60
	DefaultMaxToolRounds = 12

	SupervisorTemperature = 0.0
	WorkerTemperature     = 0.2

	routeToolName = "route"
)

// Prompts
const (
	PromptSupervisorSystem = `You are a supervisor coordinating these workers: %s.
Each worker performs a task and reports its result and status.
Given the request and the conversation so far, choose which worker acts next.
When the request is complete, or no worker can make further progress, choose FINISH.`

	PromptSupervisorRoute = `Who should act next? Select exactly one of: %s.
Answer with JSON only: {"next": "<choice>"}`

	PromptWorkerTask = "Request:\n%s\n"

	PromptWorkerConversationHeader = "\nConversation:\n"

	PromptWorkerHistoryHeader = "\nWork so far:\n"

	PromptWorkerHistoryLine = "[%s] %s\n"

	PromptWorkerWorkspace = "\nLocal repository path: %s\nRepository: %s\nCurrent branch: %s\n"
)

// Messages recorded in history
const (
	MsgWorkerFailed = "worker failed: %v"
)
