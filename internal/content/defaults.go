package content

var defaultTipGroups = []Group{
	{
		Category: "Mindset",
		Tips: []string{
			"Plan the trade before the open, not during it.",
			"A skipped trade costs nothing. A forced trade usually does.",
			"Yesterday's loss has no vote in today's plan.",
			"Small consistent wins beat hero trades.",
			"If you cannot explain the idea in one sentence, do not take it.",
			"The market reopens tomorrow. Make sure your bankroll does too.",
		},
	},
	{
		Category: "Risk",
		Tips: []string{
			"Never move a stop further away after entry.",
			"Size so that a full stop-out stings but changes nothing.",
			"One day's budget is the most the market may take today.",
			"Two losers in a row? Halve the size on the next one.",
			"Cash is a position. The plan tells you when to hold it.",
			"Risk lives in position size, not in conviction.",
		},
	},
	{
		Category: "Process",
		Tips: []string{
			"Check the plan's as-of date before acting on it.",
			"Write the exit next to the entry, every time.",
			"Export the plan and tick ideas off. Memory is a bad ledger.",
			"Read the headlines before entry. Stale news moves prices too.",
			"Refresh after big news. A plan is only as fresh as its inputs.",
			"End the day with notes, not regrets.",
		},
	},
	{
		Category: "Market",
		Tips: []string{
			"BSE volume is thin. Use limit orders, never market orders.",
			"Wide spreads eat small accounts. Respect the entry level.",
			"Global ideas trade in other time zones. Check the session first.",
			"Dual-listed counters follow the bigger market's lead.",
			"Dividend dates move prices without news. Know the calendar.",
		},
	},
}

var defaultBrokers = []Broker{
	{
		Name: "Stockbrokers Botswana",
		URL:  "https://www.stockbrokers.co.bw",
		Note: "BSE member, oldest local brokerage",
	},
	{
		Name: "Imara Capital Securities",
		URL:  "https://www.imaracapital.com",
		Note: "BSE member, regional coverage",
	},
	{
		Name: "Motswedi Securities",
		URL:  "https://www.motswedi.co.bw",
		Note: "BSE member, retail friendly",
	},
	{
		Name: "African Alliance Botswana",
		URL:  "https://www.africanalliance.com",
		Note: "BSE member, institutional focus",
	},
}

var defaultDocuments = []string{
	"Certified copy of Omang or passport",
	"Proof of residence not older than three months",
	"Three months of bank statements",
	"Completed KYC and client agreement forms",
	"Source of funds declaration",
	"Tax identification number (TIN) certificate",
}
