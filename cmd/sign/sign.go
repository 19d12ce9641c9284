package sign

import (
	"encoding/json"
	"fmt"

	"github.com/dszqbsm/musiccrawler/weapi"
	"github.com/spf13/cobra"
)

const defaultPayload = `{"username":"","password":"","rememberLogin":"true"}`

// 打印签名后的params和encSecKey，便于手动调试接口
func NewSignCmd() *cobra.Command {
	var (
		payload string
		nonce   string
		pubKey  string
		modulus string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "sign a weapi payload.",
		Long:  "sign a JSON payload for the NetEase weapi and print params and encSecKey as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any
			if err := json.Unmarshal([]byte(payload), &v); err != nil {
				return fmt.Errorf("%w: payload is not JSON: %v", weapi.ErrEncoding, err)
			}

			signer, err := weapi.NewSigner(
				weapi.WithNonce(nonce),
				weapi.WithPubKey(pubKey),
				weapi.WithModulus(modulus),
			)
			if err != nil {
				return err
			}

			params, err := signer.Sign(v)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(params)
		},
	}

	cmd.Flags().StringVar(&payload, "payload", defaultPayload, "set JSON payload")
	cmd.Flags().StringVar(&nonce, "nonce", weapi.DefaultNonce, "set first round AES key")
	cmd.Flags().StringVar(&pubKey, "pubkey", weapi.DefaultPubKey, "set RSA public exponent in hex")
	cmd.Flags().StringVar(&modulus, "modulus", weapi.DefaultModulus, "set RSA modulus in hex")
	return cmd
}
