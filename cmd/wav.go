package cmd

import (
	"fmt"

	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/internal/pipeline"
	"github.com/shouni/go-story-kit/pkg/audio"

	"github.com/spf13/cobra"
)

var wavOpts config.WAVOptions

// wavCmd は生の 16bit PCM を WAV に包むだけのユーティリティなのだ。
var wavCmd = &cobra.Command{
	Use:         "wav",
	Short:       "16bit モノラル PCM を WAV ファイルに変換するのだ。",
	Example:     "  story-kit wav --in voice.pcm --out voice.wav --rate 24000",
	Annotations: map[string]string{"offline": "true"},
	RunE:        wavCommand,
}

func init() {
	wavCmd.Flags().StringVar(&wavOpts.Input, "in", "-", "入力 PCM ファイル（'-'で標準入力なのだ）。")
	wavCmd.Flags().StringVar(&wavOpts.Output, "out", "output/story.wav", "出力先（ローカル or s3://...）なのだ。")
	wavCmd.Flags().IntVar(&wavOpts.SampleRate, "rate", audio.DefaultSampleRate, "サンプルレートなのだ。")
	wavCmd.Flags().BoolVar(&wavOpts.Base64, "base64", false, "入力が base64 テキストなら指定するのだ。")
}

func wavCommand(cmd *cobra.Command, args []string) error {
	handle, err := pipeline.ExecuteWAV(cmd.Context(), loadConfig(cmd), wavOpts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), handle)
	return nil
}
