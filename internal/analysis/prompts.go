package analysis

import (
	"fmt"
	"strings"

	"workpulse/internal/models"
)

// Sentiment labels are exchanged with the model as indices; the parser maps
// them (or the literal labels, which some models answer with) back to the
// closed label set.
var sentimentIndexOrder = []struct {
	Index string
	Label string
}{
	{"0", "positive"},
	{"1", "neutral"},
	{"2", "negative"},
}

// serializePosts renders the batch in the exact enumeration format the
// response parsers rely on: the model is expected to mirror item order.
func serializePosts(posts []models.RedditPostWithComments) string {
	var sb strings.Builder
	for i, post := range posts {
		n := i + 1
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Post %d title: %s\n", n, post.Title)
		fmt.Fprintf(&sb, "Post %d body: %s\n", n, post.Text)
		fmt.Fprintf(&sb, "Post %d comments:\n", n)
		sb.WriteString(serializeComments(post.Comments))
		fmt.Fprintf(&sb, "\nPost %d end.\n\n", n)
	}
	return sb.String()
}

func serializeComments(comments []string) string {
	lines := make([]string, 0, len(comments))
	for i, comment := range comments {
		lines = append(lines, fmt.Sprintf("Comment %d: %s", i+1, comment))
	}
	return strings.Join(lines, "\n")
}

func sentimentsPrompt(posts []models.RedditPostWithComments, companyName string) string {
	companyRelatedPart := ""
	if companyName != "" {
		companyRelatedPart = fmt.Sprintf(" related to the employer %s", companyName)
	}

	instructions := make([]string, 0, len(sentimentIndexOrder))
	for _, s := range sentimentIndexOrder {
		instructions = append(instructions, fmt.Sprintf("%s for %s", s.Index, s.Label))
	}

	return fmt.Sprintf("Analyze the sentiment%s using the %d given Reddit posts with comments, "+
		"focusing on the experiences of employees/candidates related to salaries, interviews and "+
		"general working conditions. For each post, please classify the sentiment as either %s. "+
		"Please ensure that you return exactly %d classifications separated by commas without "+
		"additional characters or words. Posts with comments:\n%s",
		companyRelatedPart, len(posts), strings.Join(instructions, ", "), len(posts), serializePosts(posts))
}

func companySummaryPrompt(posts []models.RedditPostWithComments, companyName string) string {
	return fmt.Sprintf("Based on the given Reddit posts about the company %s, write a brief summary "+
		"that captures the general sentiment and conclusions of employees and applicants regarding "+
		"working conditions, salary, benefits, and interview experiences. Instead of listing discussion "+
		"topics, summarize the key insights and common opinions expressed in the posts and comments. "+
		"Where applicable, provide conclusions on why employees or applicants view the company in a "+
		"certain way (e.g., positive feedback about salary competitiveness, or concerns about work-life "+
		"balance). The summary should feel as though the posts and comments have been thoroughly "+
		"reviewed and the main points clearly conveyed, offering a well-rounded understanding of the "+
		"company as an employer. The text may also contain additional insights or general information "+
		"that contribute to a better understanding of the company as an employer. Make the summary "+
		"objective and concise. Posts with comments:\n%s",
		companyName, serializePosts(posts))
}

func industrySummaryPrompt(posts []models.RedditPostWithComments) string {
	return fmt.Sprintf(`Analyze the following Reddit posts and comments from a subreddit focused on the tech industry. Provide a detailed and objective summary that captures the general sentiment, key topics of discussion, and any notable trends or recurring themes. Focus on insights relevant to professionals in the tech industry, such as:
- **Job market conditions**: Challenges and opportunities in finding jobs, insights for beginners versus experienced professionals, and the current state of hiring in tech companies.
- **Salary and benefits**: Opinions on salary competitiveness, perks, work-life balance, and company policies that are frequently discussed.
- **Trends in the industry**: Emerging technologies, changes in popular companies, and any shifts in demand for specific skills or roles.
- **Company culture and reputation**: Recurring opinions about specific companies, including feedback on management, team dynamics, or work environments.
- **Layoffs or industry downturns**: Discussions about layoffs, economic challenges, and their impact on the tech industry.
- **Advice and shared experiences**: Valuable insights or shared personal stories from professionals, including tips for navigating the industry or transitioning into new roles.
Ensure the summary is well-structured, concise, and provides a comprehensive overview that would be valuable for tech professionals seeking insights into the current state of the industry. Where applicable, identify reasons behind prevailing opinions and trends. Posts with comments:
%s`, serializePosts(posts))
}

func wordFrequencyPrompt(posts []models.RedditPostWithComments) string {
	return fmt.Sprintf(`Analyze the provided Reddit posts and their associated comments, which focus on the tech industry, with an emphasis on perspectives from employees and job candidates.
Identify exactly 10 words or short phrases that are most frequently mentioned in relation to sentiment (both positive and negative) within the context of employee and candidate experiences.
For each word or phrase:
- Provide the word or phrase along with a count indicating how many times it appears in sentiment-related contexts.
- Format the response as follows: word:count, where each pair is listed on a new line.
- Do not include any additional text, headers, or explanations in the response.
Additional instructions:
- Focus solely on the posts and comments provided, avoiding reliance on predefined examples or assumptions.
- Ensure the identified words or phrases reflect sentiment strength and relevance to employee or candidate experiences.
- Exclude general words or stopwords that are unrelated to sentiment (e.g., "the", "and", "of").
Posts with comments:
%s`, serializePosts(posts))
}
