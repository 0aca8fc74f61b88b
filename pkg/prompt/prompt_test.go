package prompt_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/prompt"
)

func history(n int) []llm.Exchange {
	out := make([]llm.Exchange, 0, n)
	for i := range n {
		out = append(out, llm.Exchange{
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
			Language: language.Auto,
		})
	}
	return out
}

var _ = Describe("Build", func() {
	It("starts with the persona in the requested language", func() {
		msgs := prompt.Build("Which fertilizer for maize?", language.Telugu, nil)
		Expect(msgs[0].Role).To(Equal(llm.RoleSystem))
		Expect(msgs[0].Content).To(ContainSubstring("expert farming advisor"))
		Expect(msgs[0].Content).To(ContainSubstring("Answer in Telugu."))
		Expect(msgs[0].Content).To(ContainSubstring("bullet points"))
	})

	It("ends with the new question", func() {
		msgs := prompt.Build("Which fertilizer for maize?", language.Auto, history(2))
		last := msgs[len(msgs)-1]
		Expect(last).To(Equal(llm.NewUserMessage("Which fertilizer for maize?")))
	})

	DescribeTable("produces 1 + 2*len(history) + 1 messages",
		func(n int) {
			Expect(prompt.Build("q", language.Auto, history(n))).To(HaveLen(2 + 2*n))
		},
		Entry("no history", 0),
		Entry("one exchange", 1),
		Entry("a full window", prompt.DefaultWindow),
	)

	It("alternates user and assistant messages in history order", func() {
		msgs := prompt.Build("next", language.Auto, history(3))
		for i := range 3 {
			user := msgs[1+2*i]
			assistant := msgs[2+2*i]
			Expect(user).To(Equal(llm.NewUserMessage(fmt.Sprintf("q%d", i))))
			Expect(assistant).To(Equal(llm.NewAssistantMessage(fmt.Sprintf("a%d", i))))
		}
	})

	It("keeps only the newest exchanges beyond the window", func() {
		msgs := prompt.Builder{Window: 2}.Build("next", language.Auto, history(4))
		Expect(msgs).To(HaveLen(6))
		Expect(msgs[1].Content).To(Equal("q2"))
		Expect(msgs[3].Content).To(Equal("q3"))
	})

	It("regenerates the persona per call", func() {
		h := history(1)
		Expect(prompt.Build("q", language.Hindi, h)[0].Content).To(ContainSubstring("Hindi"))
		Expect(prompt.Build("q", language.Kannada, h)[0].Content).To(ContainSubstring("Kannada"))
	})

	It("does not modify the supplied history", func() {
		h := history(6)
		prompt.Build("q", language.Auto, h)
		Expect(h).To(HaveLen(6))
		Expect(h[0].Question).To(Equal("q0"))
	})
})
