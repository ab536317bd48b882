package github

import "time"

const (
	DefaultGraphQLURL = "https://api.github.com/graphql"

	perPage        = 100
	graphqlTimeout = 30 * time.Second
	lowRateLimit   = 100

	closesFmt = "Closes #%d"
)

const linkedIssuesQuery = `query($owner: String!, $repo: String!, $pr: Int!) {
	repository(owner: $owner, name: $repo) {
		pullRequest(number: $pr) {
			closingIssuesReferences(first: 25) {
				nodes {
					number
					title
					body
				}
			}
		}
	}
}`
