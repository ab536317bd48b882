package automation

import (
	"time"

	"repo-autobot/internal/agent/orchestrator"
)

// Log prefixes
const (
	LogPrefixDispatch = "internal.automation.Dispatch"
	LogPrefixRun      = "internal.automation.Run"
	LogPrefixReview   = "internal.automation.ReviewAndBeautify"
	LogPrefixIngest   = "internal.automation.IngestRepository"
)

// Worker nodes
const (
	NodeCheckoutAgent orchestrator.NodeName = "CheckoutAgent"
	NodeResearcher    orchestrator.NodeName = "Researcher"
	NodeCoder         orchestrator.NodeName = "Coder"
	NodeReviewer      orchestrator.NodeName = "Reviewer"
	NodeQATester      orchestrator.NodeName = "QATester"
	NodeFileWriter    orchestrator.NodeName = "FileWriter"
	NodePrAgent       orchestrator.NodeName = "PrAgent"
	NodeCommitter     orchestrator.NodeName = "Committer"
)

// Task argument keys
const (
	ArgIssueNumber  = "issue_number"
	ArgIssueTitle   = "issue_title"
	ArgIssueBody    = "issue_body"
	ArgPRNumber     = "pr_number"
	ArgSourceBranch = "source_branch"
	ArgCommentID    = "comment_id"
	ArgReviewID     = "review_id"
	ArgTrigger      = "trigger"

	TriggerComment = "comment"
	TriggerReview  = "review"
)

const (
	DefaultRunTimeout     = 20 * time.Minute
	DefaultKnowledgeLimit = 5
	DefaultMaxFileBytes   = 512 * 1024

	reviewTemperature = 0.3
	ingestDir         = "knowledge"
)

// Prompts
const (
	PromptImplementIssue = `Raise a pull request that implements the following GitHub issue.
Issue number: %d
Issue title: %s
Issue content:
%s`

	PromptAddressSupport = `Address the comment thread below on pull request #%d (branch %s).
If the comments ask for code changes, make them in the local repository, then commit and push to the branch.
If they do not ask for code changes, answer them clearly and concisely.`

	PromptAddressReview = `Address the review below on pull request #%d (branch %s).
If the review asks for code changes, make them in the local repository, then commit and push to the branch.
If it does not ask for code changes, answer it clearly and concisely.`

	PromptCodeChanges = "\nCode changes:\n%s"

	PromptReviewSystem = `You are a senior developer reviewing a pull request.
You give detailed, specific and actionable feedback in Markdown.`

	PromptReview = `Check the code changes below against the requirements in the issues.
Answer in Markdown with these sections:
## Overview of the changes
Highlight the main changes across files, no more than 3 sentences per change.
## How the changes address the issues
For each issue the changes might close, explain how they address it.
## Grading
Give a score from 0 to 10, where 10 means every requirement is met with good code.
Missing tests are not a reason to grade down unless an issue asks for them.
## Improvement suggestions
Suggest a few specific ideas to improve the code.
----------------------------------------
Code changes:
%s
----------------------------------------
Issues which might be closed by the code changes:
%s
----------------------------------------
Related code from the repository:
%s`
)

// Comment bodies posted back to GitHub
const (
	MsgNoLinkedIssues = "There are no linked issues. Auto-review can't be done."
	MsgNoAnswer       = "The bot finished without an answer."
	MsgRunFailed      = "The bot could not complete this request: %v"
	MsgBeautifyCommit = "Format code changed by #%d"
)
